package poll

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Poll holds the live state of one poll. All mutation goes through the
// owning Engine.
type Poll struct {
	id        string
	question  string
	title     string
	footer    string
	options   []string
	tally     []int
	voters    map[string]int // userID -> currently chosen option index
	endAt     time.Time
	ended     bool
	voterRole string
	surface   SurfaceHandle
	createdAt time.Time
}

// Engine owns poll state, vote application, and close sequencing. State
// commits always happen before any presentation I/O; presentation
// failures are logged and never roll a commit back.
type Engine struct {
	polls     map[string]*Poll
	closed    map[string]struct{} // ids of closed polls, so a late close reports the right conflict
	presenter Presenter
	scheduler Scheduler
	now       func() time.Time
	logger    *zap.Logger
	metrics   *Metrics
	mu        sync.RWMutex
}

// NewEngine creates a poll engine
func NewEngine(presenter Presenter, scheduler Scheduler, logger *zap.Logger) *Engine {
	return &Engine{
		polls:     make(map[string]*Poll),
		closed:    make(map[string]struct{}),
		presenter: presenter,
		scheduler: scheduler,
		now:       time.Now,
		logger:    logger,
		metrics:   NewMetrics(),
	}
}

// Create registers a new poll, renders its initial presentation, and
// schedules the auto-close callback for its deadline.
func (e *Engine) Create(ctx context.Context, params CreateParams) (*Snapshot, error) {
	if len(params.Options) < MinOptions || len(params.Options) > MaxOptions {
		return nil, ErrInvalidOptionCount
	}
	if params.Duration < MinDuration {
		return nil, ErrInvalidDuration
	}

	now := e.now()
	p := &Poll{
		id:        uuid.New().String(),
		question:  params.Question,
		title:     params.Title,
		footer:    params.Footer,
		options:   append([]string(nil), params.Options...),
		tally:     make([]int, len(params.Options)),
		voters:    make(map[string]int),
		endAt:     now.Add(params.Duration),
		voterRole: params.VoterRole,
		createdAt: now,
	}

	e.mu.Lock()
	e.polls[p.id] = p
	snap := p.snapshot()
	e.mu.Unlock()

	e.metrics.IncrementCreated()

	// Initial render; a failure leaves the poll live with no surface,
	// which later updates treat as nothing to refresh.
	handle, err := e.presenter.RenderPoll(ctx, snap)
	if err != nil {
		e.logger.Warn("Poll render failed",
			zap.String("pollID", p.id),
			zap.Error(err))
	} else {
		e.mu.Lock()
		p.surface = handle
		e.mu.Unlock()
	}

	// The callback relies on the ended guard in Close rather than timer
	// cancellation: a manual close neutralizes it.
	pollID := p.id
	e.scheduler.At(p.endAt, func() {
		if _, err := e.Close(context.Background(), pollID, CloseOverrides{}); err != nil {
			e.logger.Debug("Auto-close found poll already gone",
				zap.String("pollID", pollID),
				zap.Error(err))
		}
	})

	e.logger.Info("Poll created",
		zap.String("pollID", p.id),
		zap.Int("options", len(p.options)),
		zap.Time("endAt", p.endAt))

	return snap, nil
}

// ApplyVote applies one user's choice to a poll. A repeat of the current
// choice is reported as ErrSameOption and changes nothing; a different
// choice switches the vote, so each user holds exactly one live vote.
func (e *Engine) ApplyVote(ctx context.Context, pollID, userID string, option int, actorRoles []string) (*Snapshot, error) {
	e.mu.Lock()
	p, exists := e.polls[pollID]
	if !exists {
		_, was := e.closed[pollID]
		e.mu.Unlock()
		e.metrics.IncrementVotesRejected()
		if was {
			return nil, ErrPollEnded
		}
		return nil, ErrPollNotFound
	}
	if p.ended {
		e.mu.Unlock()
		e.metrics.IncrementVotesRejected()
		return nil, ErrPollEnded
	}
	if p.voterRole != "" && !lo.Contains(actorRoles, p.voterRole) {
		e.mu.Unlock()
		e.metrics.IncrementVotesRejected()
		return nil, ErrNotEligible
	}
	if option < 0 || option >= len(p.options) {
		e.mu.Unlock()
		e.metrics.IncrementVotesRejected()
		return nil, ErrInvalidOption
	}

	previous, voted := p.voters[userID]
	if voted && previous == option {
		e.mu.Unlock()
		return nil, ErrSameOption
	}

	if voted && p.tally[previous] > 0 { // floor at zero, guards tally corruption
		p.tally[previous]--
	}
	p.tally[option]++
	p.voters[userID] = option

	snap := p.snapshot()
	handle := p.surface
	e.mu.Unlock()

	e.metrics.IncrementVotesApplied()

	if handle != "" {
		if err := e.presenter.UpdatePoll(ctx, handle, snap); err != nil {
			e.logger.Warn("Poll update failed",
				zap.String("pollID", pollID),
				zap.Error(err))
		}
	}

	return snap, nil
}

// SetVoterRole changes the role constraint of an open poll. An empty
// roleID removes the constraint.
func (e *Engine) SetVoterRole(pollID, roleID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, exists := e.polls[pollID]
	if !exists {
		if _, was := e.closed[pollID]; was {
			return ErrPollEnded
		}
		return ErrPollNotFound
	}
	if p.ended {
		return ErrPollEnded
	}

	p.voterRole = roleID
	return nil
}

// Close transitions a poll to its terminal state. The ended flag is the
// authoritative race guard between the auto-close timer and a manual
// close: it is committed before any outbound I/O, and the loser of the
// race observes ErrAlreadyClosed. Presentation failures never reopen the
// poll; it is evicted regardless.
func (e *Engine) Close(ctx context.Context, pollID string, overrides CloseOverrides) (*Snapshot, error) {
	e.mu.Lock()
	p, exists := e.polls[pollID]
	if !exists {
		_, was := e.closed[pollID]
		e.mu.Unlock()
		if was {
			return nil, ErrAlreadyClosed
		}
		return nil, ErrPollNotFound
	}
	if p.ended {
		e.mu.Unlock()
		return nil, ErrAlreadyClosed
	}

	p.ended = true
	if overrides.Title != "" {
		p.title = overrides.Title
	}
	if overrides.Footer != "" {
		p.footer = overrides.Footer
	}
	snap := p.snapshot()
	handle := p.surface
	e.mu.Unlock()

	e.metrics.IncrementClosed()

	if handle != "" {
		if err := e.presenter.UpdatePoll(ctx, handle, snap); err != nil {
			e.logger.Warn("Final poll render failed",
				zap.String("pollID", pollID),
				zap.Error(err))
		}
		if err := e.presenter.DisableInteraction(ctx, handle); err != nil {
			e.logger.Warn("Disabling poll interaction failed",
				zap.String("pollID", pollID),
				zap.Error(err))
		}
	}

	e.mu.Lock()
	delete(e.polls, pollID)
	e.closed[pollID] = struct{}{}
	e.mu.Unlock()

	e.logger.Info("Poll closed",
		zap.String("pollID", pollID),
		zap.Int("voters", snap.Voters))

	return snap, nil
}

// GetStats returns current engine statistics
func (e *Engine) GetStats() Stats {
	e.mu.RLock()
	active := len(e.polls)
	e.mu.RUnlock()
	return e.metrics.GetStats(active)
}

// snapshot must be called with the engine lock held.
func (p *Poll) snapshot() *Snapshot {
	return &Snapshot{
		ID:       p.id,
		Question: p.question,
		Title:    p.title,
		Footer:   p.footer,
		Options:  append([]string(nil), p.options...),
		Tally:    append([]int(nil), p.tally...),
		Voters:   len(p.voters),
		Ended:    p.ended,
		EndAt:    p.endAt,
	}
}
