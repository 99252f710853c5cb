package events

import (
	"time"

	"guild_warden/pkg/moderation"
	"guild_warden/pkg/poll"
)

// Event is any typed inbound platform event. The gateway translates raw
// platform payloads into these before dispatch.
type Event interface {
	eventName() string
}

// VoteCast is a poll button press.
type VoteCast struct {
	PollID     string
	UserID     string
	Option     int
	ActorRoles []string
}

// PollCloseRequested is a manual close command.
type PollCloseRequested struct {
	PollID    string
	Overrides poll.CloseOverrides
}

// TicketCategorySelected is a ticket panel menu selection.
type TicketCategorySelected struct {
	ActorID    string
	Key        string
	ActorRoles []string
}

// ClaimRequested is a ticket claim button press.
type ClaimRequested struct {
	TicketID   string
	ActorID    string
	ActorRoles []string
}

// TicketCloseRequested is a ticket close button press.
type TicketCloseRequested struct {
	TicketID string
	ActorID  string
	Reason   string
}

// SessionStartRequested starts a private staff session surface.
type SessionStartRequested struct {
	ActorID string
	Topic   string
}

// SessionStopRequested stops the actor's session.
type SessionStopRequested struct {
	ActorID string
}

// MentionObserved is a message that pinged roles or members, with the
// mentions already resolved to role ID sets.
type MentionObserved struct {
	AuthorID       string
	AuthorRoles    []string
	ChannelID      string
	MessageID      string
	MentionedRoles []string
	MentionedUsers map[string][]string
	At             time.Time
}

func (VoteCast) eventName() string               { return "vote_cast" }
func (PollCloseRequested) eventName() string     { return "poll_close_requested" }
func (TicketCategorySelected) eventName() string { return "ticket_category_selected" }
func (ClaimRequested) eventName() string         { return "claim_requested" }
func (TicketCloseRequested) eventName() string   { return "ticket_close_requested" }
func (SessionStartRequested) eventName() string  { return "session_start_requested" }
func (SessionStopRequested) eventName() string   { return "session_stop_requested" }
func (MentionObserved) eventName() string        { return "mention_observed" }

func (m MentionObserved) mention() moderation.Mention {
	return moderation.Mention{
		AuthorID:       m.AuthorID,
		AuthorRoles:    m.AuthorRoles,
		ChannelID:      m.ChannelID,
		MessageID:      m.MessageID,
		MentionedRoles: m.MentionedRoles,
		MentionedUsers: m.MentionedUsers,
		At:             m.At,
	}
}
