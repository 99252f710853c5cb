package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler issues delayed one-shot callbacks and cron-backed recurring
// jobs. One-shot timers fire at most once and survive manual cancellation
// only through the callers' own idempotence guards; Stop prevents any
// timer that has not fired yet from firing.
type Scheduler struct {
	cron    *cron.Cron
	now     func() time.Time
	logger  *zap.Logger
	timers  map[uint64]*time.Timer
	nextID  uint64
	stopped bool
	mu      sync.Mutex
}

// NewScheduler creates a scheduler whose cron expressions include a
// seconds field.
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		now:    time.Now,
		logger: logger,
		timers: make(map[uint64]*time.Timer),
	}
}

// Start begins the recurring job runner. One-shot timers do not require
// Start; they are live as soon as they are registered.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the recurring job runner and drops all pending one-shot
// timers. Blocks until running cron jobs have finished.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
}

// After schedules fn to run once after d. A non-positive duration fires
// immediately.
func (s *Scheduler) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	id := s.nextID
	s.nextID++
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
}

// At schedules fn to run once at t. A timestamp in the past fires
// immediately.
func (s *Scheduler) At(t time.Time, fn func()) {
	s.After(t.Sub(s.now()), fn)
}

// Schedule registers a recurring job. The spec uses the six-field cron
// syntax with seconds.
func (s *Scheduler) Schedule(spec string, name string, fn func()) (cron.EntryID, error) {
	id, err := s.cron.AddFunc(spec, fn)
	if err != nil {
		return 0, fmt.Errorf("scheduling job %q: %w", name, err)
	}

	s.logger.Info("Recurring job scheduled",
		zap.String("job", name),
		zap.String("schedule", spec),
		zap.Time("nextRun", s.cron.Entry(id).Next))

	return id, nil
}

// Pending reports the number of one-shot timers that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
