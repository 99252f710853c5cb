package moderation

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotStaff gates the manual moderation commands
	ErrNotStaff = errors.New("actor lacks a staff role")
)

// Infraction is the record posted to the infractions log for every
// moderation action, manual or automated.
type Infraction struct {
	Kind        string
	TargetID    string
	ModeratorID string // empty for automated actions
	Reason      string
	Duration    time.Duration // zero unless Kind is a timeout
	IssuedAt    time.Time
}

// Promotion is the record posted to the promotions log.
type Promotion struct {
	TargetID string
	ActorID  string
	NewRole  string
	Reason   string
	IssuedAt time.Time
}

// Moderator is the platform port for punitive and announcement side
// effects. Every call is best-effort from the engines' point of view:
// state has already committed when these run.
type Moderator interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	NotifyChannel(ctx context.Context, channelID, text string) error
	DirectMessage(ctx context.Context, userID, text string) error
	Timeout(ctx context.Context, userID string, d time.Duration, reason string) error
	ClearTimeout(ctx context.Context, userID, reason string) error
	Kick(ctx context.Context, userID, reason string) error
	Ban(ctx context.Context, userID, reason string, purgeDays int) error
	PostInfraction(ctx context.Context, rec Infraction) error
	PostPromotion(ctx context.Context, ann Promotion) error
}

// Mention is one observed message that pinged roles or members. The
// gateway resolves raw platform mentions into role ID sets before the
// guard sees them.
type Mention struct {
	AuthorID       string
	AuthorRoles    []string
	ChannelID      string
	MessageID      string
	MentionedRoles []string            // role IDs pinged directly
	MentionedUsers map[string][]string // pinged userID -> that user's role IDs
	At             time.Time
}
