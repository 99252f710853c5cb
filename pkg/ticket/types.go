package ticket

import (
	"context"
	"errors"
	"time"
)

// Error variables for consistent error handling
var (
	ErrInvalidCategory = errors.New("unknown ticket category")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrAlreadyClaimed  = errors.New("ticket already claimed")
	ErrNotEligible     = errors.New("actor may not claim this ticket")
	ErrSurfaceCreation = errors.New("creating ticket surface failed")
	ErrSessionActive   = errors.New("an active session already exists")
	ErrNoSession       = errors.New("no active session")
)

// SurfaceHandle is an opaque reference to the dedicated conversation
// surface backing a ticket or session.
type SurfaceHandle string

// HistoryEntry is one message of a surface's ordered history.
type HistoryEntry struct {
	Timestamp time.Time
	AuthorID  string
	Text      string
}

// Surface is the conversation-surface port. Every call reaches the
// platform; the workflow treats close-time failures as best-effort.
type Surface interface {
	CreateRestrictedSurface(ctx context.Context, name string, participants []string, roleAllowList []string) (SurfaceHandle, error)
	FetchHistory(ctx context.Context, handle SurfaceHandle) ([]HistoryEntry, error)
	PostArchive(ctx context.Context, destination string, transcript string, metadata map[string]string) error
	NotifyUser(ctx context.Context, userID string, text string) error
	Destroy(ctx context.Context, handle SurfaceHandle) error
}

// Ticket is one open ticket. ClaimedBy is set at most once; there is no
// unclaim.
type Ticket struct {
	ID        string
	Key       string
	OpenerID  string
	ClaimedBy string
	Surface   SurfaceHandle
	OpenedAt  time.Time
}

// Stats summarizes workflow activity
type Stats struct {
	OpenTickets    int
	ActiveSessions int
	TicketsOpened  int64
	TicketsClosed  int64
}
