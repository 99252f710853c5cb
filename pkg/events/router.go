package events

import (
	"context"

	"go.uber.org/zap"

	"guild_warden/pkg/moderation"
	"guild_warden/pkg/poll"
	"guild_warden/pkg/ticket"
)

const defaultInboxSize = 256

// Router drains inbound events on a single consumer goroutine and
// dispatches them to the engines. The one consumer preserves per-entity
// arrival order end to end; the engines' own locks make re-entry from
// timer callbacks safe.
type Router struct {
	polls   *poll.Engine
	tickets *ticket.Workflow
	guard   *moderation.Guard
	inbox   chan Event
	logger  *zap.Logger
}

// NewRouter creates an event router over the three engines.
func NewRouter(polls *poll.Engine, tickets *ticket.Workflow, guard *moderation.Guard, logger *zap.Logger) *Router {
	return &Router{
		polls:   polls,
		tickets: tickets,
		guard:   guard,
		inbox:   make(chan Event, defaultInboxSize),
		logger:  logger,
	}
}

// Dispatch enqueues an event without blocking the gateway goroutine.
// Returns false when the inbox is full and the event was dropped.
func (r *Router) Dispatch(ev Event) bool {
	select {
	case r.inbox <- ev:
		return true
	default:
		r.logger.Warn("Event inbox full, dropping event",
			zap.String("event", ev.eventName()))
		return false
	}
}

// Run consumes events until ctx is cancelled.
func (r *Router) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-r.inbox:
			r.handle(ctx, ev)
		}
	}
}

// handle translates one event into an engine operation. Engine outcomes
// are logged here; the command layer that turns them into user-visible
// replies sits outside the core.
func (r *Router) handle(ctx context.Context, ev Event) {
	var err error

	switch e := ev.(type) {
	case VoteCast:
		_, err = r.polls.ApplyVote(ctx, e.PollID, e.UserID, e.Option, e.ActorRoles)
	case PollCloseRequested:
		_, err = r.polls.Close(ctx, e.PollID, e.Overrides)
	case TicketCategorySelected:
		_, err = r.tickets.Open(ctx, e.ActorID, e.Key, e.ActorRoles)
	case ClaimRequested:
		err = r.tickets.Claim(ctx, e.TicketID, e.ActorID, e.ActorRoles)
	case TicketCloseRequested:
		err = r.tickets.Close(ctx, e.TicketID, e.ActorID, e.Reason)
	case SessionStartRequested:
		_, err = r.tickets.StartSession(ctx, e.ActorID, e.Topic)
	case SessionStopRequested:
		err = r.tickets.StopSession(ctx, e.ActorID)
	case MentionObserved:
		r.guard.HandleMention(ctx, e.mention())
	default:
		r.logger.Warn("Unroutable event", zap.String("event", ev.eventName()))
		return
	}

	if err != nil {
		r.logger.Info("Event rejected",
			zap.String("event", ev.eventName()),
			zap.Error(err))
	}
}
