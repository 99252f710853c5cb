package ticket

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"guild_warden/pkg/config"
)

// Workflow owns ticket and session state. Tickets move through
// Requested -> Created -> [Claimed] -> Closed; close is terminal no
// matter which of its best-effort steps fail.
type Workflow struct {
	tickets       map[string]*Ticket
	sessions      map[string]SurfaceHandle // staff userID -> session surface
	categories    map[string]config.TicketCategory
	staffRoles    []string
	surface       Surface
	logger        *zap.Logger
	now           func() time.Time
	ticketsOpened int64
	ticketsClosed int64
	mu            sync.RWMutex
}

// NewWorkflow creates a ticket workflow over the configured category
// table. Staff roles may claim any category and are granted access to
// every ticket surface.
func NewWorkflow(cfg config.TicketConfig, staffRoles []string, surface Surface, logger *zap.Logger) *Workflow {
	return &Workflow{
		tickets:    make(map[string]*Ticket),
		sessions:   make(map[string]SurfaceHandle),
		categories: cfg.Categories,
		staffRoles: staffRoles,
		surface:    surface,
		logger:     logger,
		now:        time.Now,
	}
}

// claimEligible decides whether an actor holding the given roles may
// claim a ticket of the given category. Staff always qualify; a
// category-restricted key additionally admits its own claim role.
func (w *Workflow) claimEligible(cat config.TicketCategory, roles []string) bool {
	if len(lo.Intersect(w.staffRoles, roles)) > 0 {
		return true
	}
	return cat.ClaimRole != "" && lo.Contains(roles, cat.ClaimRole)
}

// Open creates the restricted surface first and only then records the
// ticket, so a surface failure leaves no partial state behind.
func (w *Workflow) Open(ctx context.Context, openerID, key string, actorRoles []string) (*Ticket, error) {
	if _, ok := w.categories[key]; !ok {
		return nil, ErrInvalidCategory
	}

	id := uuid.New().String()
	name := fmt.Sprintf("ticket-%s-%s", key, openerID)
	handle, err := w.surface.CreateRestrictedSurface(ctx, name, []string{openerID}, w.staffRoles)
	if err != nil {
		w.logger.Warn("Ticket surface creation failed",
			zap.String("openerID", openerID),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSurfaceCreation, err)
	}

	tk := &Ticket{
		ID:       id,
		Key:      key,
		OpenerID: openerID,
		Surface:  handle,
		OpenedAt: w.now(),
	}

	w.mu.Lock()
	w.tickets[id] = tk
	w.ticketsOpened++
	w.mu.Unlock()

	w.logger.Info("Ticket opened",
		zap.String("ticketID", id),
		zap.String("key", key),
		zap.String("openerID", openerID))

	clone := *tk
	return &clone, nil
}

// Claim assigns the ticket to the first eligible actor. First claim
// wins; there is no override and no unclaim.
func (w *Workflow) Claim(ctx context.Context, ticketID, actorID string, actorRoles []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tk, exists := w.tickets[ticketID]
	if !exists {
		return ErrTicketNotFound
	}
	if tk.ClaimedBy != "" {
		return ErrAlreadyClaimed
	}
	if !w.claimEligible(w.categories[tk.Key], actorRoles) {
		return ErrNotEligible
	}

	tk.ClaimedBy = actorID

	w.logger.Info("Ticket claimed",
		zap.String("ticketID", ticketID),
		zap.String("claimedBy", actorID))

	return nil
}

// Close terminates a ticket: the record is evicted first, then the four
// delivery steps run best-effort in order (transcript capture, archive,
// opener notification, surface teardown). A failed step is logged and
// the sequence continues; there is no retry queue. Any actor with
// surface access may close.
func (w *Workflow) Close(ctx context.Context, ticketID, closedBy, reason string) error {
	w.mu.Lock()
	tk, exists := w.tickets[ticketID]
	if !exists {
		w.mu.Unlock()
		return ErrTicketNotFound
	}
	delete(w.tickets, ticketID)
	w.ticketsClosed++
	w.mu.Unlock()

	cat := w.categories[tk.Key]

	transcript := ""
	history, err := w.surface.FetchHistory(ctx, tk.Surface)
	if err != nil {
		w.logger.Warn("Transcript capture failed",
			zap.String("ticketID", ticketID),
			zap.Error(err))
	} else {
		transcript = renderTranscript(history)
	}

	metadata := map[string]string{
		"ticket":   ticketID,
		"key":      tk.Key,
		"opener":   tk.OpenerID,
		"closedBy": closedBy,
	}
	if reason != "" {
		metadata["reason"] = reason
	}
	if tk.ClaimedBy != "" {
		metadata["claimedBy"] = tk.ClaimedBy
	}

	if err := w.surface.PostArchive(ctx, cat.Destination, transcript, metadata); err != nil {
		w.logger.Warn("Archiving transcript failed",
			zap.String("ticketID", ticketID),
			zap.String("destination", cat.Destination),
			zap.Error(err))
	}

	notice := fmt.Sprintf("Your %s ticket has been closed by %s.", tk.Key, closedBy)
	if reason != "" {
		notice += " Reason: " + reason
	}
	if err := w.surface.NotifyUser(ctx, tk.OpenerID, notice); err != nil {
		w.logger.Warn("Notifying ticket opener failed",
			zap.String("ticketID", ticketID),
			zap.String("openerID", tk.OpenerID),
			zap.Error(err))
	}

	if err := w.surface.Destroy(ctx, tk.Surface); err != nil {
		w.logger.Warn("Destroying ticket surface failed",
			zap.String("ticketID", ticketID),
			zap.Error(err))
	}

	w.logger.Info("Ticket closed",
		zap.String("ticketID", ticketID),
		zap.String("closedBy", closedBy))

	return nil
}

// Get returns a copy of a live ticket.
func (w *Workflow) Get(ticketID string) (*Ticket, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	tk, exists := w.tickets[ticketID]
	if !exists {
		return nil, ErrTicketNotFound
	}
	clone := *tk
	return &clone, nil
}

// StartSession opens a private session surface for a staff member. One
// session per user.
func (w *Workflow) StartSession(ctx context.Context, userID, topic string) (SurfaceHandle, error) {
	w.mu.RLock()
	_, active := w.sessions[userID]
	w.mu.RUnlock()
	if active {
		return "", ErrSessionActive
	}

	name := "session-" + userID
	handle, err := w.surface.CreateRestrictedSurface(ctx, name, []string{userID}, w.staffRoles)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSurfaceCreation, err)
	}

	w.mu.Lock()
	w.sessions[userID] = handle
	w.mu.Unlock()

	w.logger.Info("Session started",
		zap.String("userID", userID),
		zap.String("topic", topic))

	return handle, nil
}

// StopSession tears down a staff member's session surface.
func (w *Workflow) StopSession(ctx context.Context, userID string) error {
	w.mu.Lock()
	handle, active := w.sessions[userID]
	if !active {
		w.mu.Unlock()
		return ErrNoSession
	}
	delete(w.sessions, userID)
	w.mu.Unlock()

	if err := w.surface.Destroy(ctx, handle); err != nil {
		w.logger.Warn("Destroying session surface failed",
			zap.String("userID", userID),
			zap.Error(err))
	}

	return nil
}

// GetStats returns current workflow statistics
func (w *Workflow) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return Stats{
		OpenTickets:    len(w.tickets),
		ActiveSessions: len(w.sessions),
		TicketsOpened:  w.ticketsOpened,
		TicketsClosed:  w.ticketsClosed,
	}
}

func renderTranscript(history []HistoryEntry) string {
	lines := lo.Map(history, func(entry HistoryEntry, _ int) string {
		return fmt.Sprintf("[%s] %s: %s",
			entry.Timestamp.UTC().Format(time.RFC3339), entry.AuthorID, entry.Text)
	})
	return strings.Join(lines, "\n")
}
