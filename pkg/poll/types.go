package poll

import (
	"context"
	"errors"
	"time"
)

// Option count bounds for a poll
const (
	MinOptions = 2
	MaxOptions = 10

	// MinDuration is the shortest poll lifetime a command may request
	MinDuration = time.Hour
)

// Error variables for consistent error handling
var (
	ErrInvalidOptionCount = errors.New("poll must have between 2 and 10 options")
	ErrInvalidDuration    = errors.New("poll duration must be at least one hour")
	ErrPollNotFound       = errors.New("poll not found")
	ErrPollEnded          = errors.New("poll already ended")
	ErrAlreadyClosed      = errors.New("poll already closed")
	ErrNotEligible        = errors.New("voter does not hold the required role")
	ErrInvalidOption      = errors.New("option index out of range")
	ErrSameOption         = errors.New("vote already cast for this option")
)

// SurfaceHandle is an opaque reference to the platform message a poll is
// rendered on.
type SurfaceHandle string

// Presenter renders a poll onto the platform. Failures are logged by the
// engine, never surfaced as engine errors: the in-memory state is
// authoritative.
type Presenter interface {
	RenderPoll(ctx context.Context, snap *Snapshot) (SurfaceHandle, error)
	UpdatePoll(ctx context.Context, handle SurfaceHandle, snap *Snapshot) error
	DisableInteraction(ctx context.Context, handle SurfaceHandle) error
}

// Scheduler issues the auto-close callback for a poll deadline.
type Scheduler interface {
	At(t time.Time, fn func())
}

// CreateParams describes a new poll
type CreateParams struct {
	Question  string
	Title     string
	Footer    string
	Options   []string
	Duration  time.Duration
	VoterRole string // optional; empty means anyone may vote
}

// CloseOverrides optionally replaces display text on the final render
type CloseOverrides struct {
	Title  string
	Footer string
}

// Snapshot is a pure projection of poll state for rendering. It is
// recomputed on every change so live numbers are never stale relative to
// the engine's state.
type Snapshot struct {
	ID       string
	Question string
	Title    string
	Footer   string
	Options  []string
	Tally    []int
	Voters   int
	Ended    bool
	EndAt    time.Time
}

// Stats summarizes engine activity
type Stats struct {
	ActivePolls   int
	PollsCreated  int64
	PollsClosed   int64
	VotesApplied  int64
	VotesRejected int64
	LastUpdate    time.Time
}
