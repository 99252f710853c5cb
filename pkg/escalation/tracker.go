package escalation

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"guild_warden/pkg/config"
)

const (
	// Default ladder bounds when no configuration is supplied
	DefaultWindow      = 24 * time.Hour
	DefaultBaseTimeout = 5 * time.Minute
	DefaultMaxTimeout  = 120 * time.Minute
)

// ActionKind classifies the punitive action for an escalation level
type ActionKind string

const (
	ActionWarn    ActionKind = "warn"
	ActionTimeout ActionKind = "timeout"
)

// Action is what the caller should apply for a given escalation level.
// Delivery is the caller's problem: a failed timeout must not roll the
// tracker state back.
type Action struct {
	Kind     ActionKind
	Duration time.Duration
}

// strikeRecord tracks one user's offenses inside the current window.
// Records whose window has lapsed are left in place; the next offense
// replaces them.
type strikeRecord struct {
	count         int
	windowResetAt time.Time
}

// Tracker counts per-user offenses within a rolling window and maps the
// resulting level onto an escalating action ladder.
type Tracker struct {
	records     map[string]*strikeRecord
	window      time.Duration
	baseTimeout time.Duration
	maxTimeout  time.Duration
	logger      *zap.Logger
	mu          sync.Mutex
}

// NewTracker creates a tracker with the configured window and timeout
// bounds, falling back to the defaults for unset values.
func NewTracker(cfg config.EscalationConfig, logger *zap.Logger) *Tracker {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.BaseTimeout <= 0 {
		cfg.BaseTimeout = DefaultBaseTimeout
	}
	if cfg.MaxTimeout <= 0 {
		cfg.MaxTimeout = DefaultMaxTimeout
	}

	return &Tracker{
		records:     make(map[string]*strikeRecord),
		window:      cfg.Window,
		baseTimeout: cfg.BaseTimeout,
		maxTimeout:  cfg.MaxTimeout,
		logger:      logger,
	}
}

// RegisterOffense records an offense for userID at the given instant and
// returns the escalation level. The first offense of a window is level 1;
// every further offense inside the window increments the level.
func (t *Tracker) RegisterOffense(userID string, now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, exists := t.records[userID]
	if !exists || !now.Before(rec.windowResetAt) {
		t.records[userID] = &strikeRecord{
			count:         1,
			windowResetAt: now.Add(t.window),
		}
		return 1
	}

	rec.count++

	t.logger.Info("Repeat offense inside window",
		zap.String("userID", userID),
		zap.Int("level", rec.count),
		zap.Time("windowResetAt", rec.windowResetAt))

	return rec.count
}

// ActionForLevel maps an escalation level onto an action. Level 1 is a
// warning; from level 2 on the timeout doubles per level, capped at the
// configured maximum. Pure, no state touched.
func (t *Tracker) ActionForLevel(level int) Action {
	if level <= 1 {
		return Action{Kind: ActionWarn}
	}

	d := t.baseTimeout
	for i := 2; i < level && d < t.maxTimeout; i++ {
		d *= 2
	}
	if d > t.maxTimeout {
		d = t.maxTimeout
	}

	return Action{Kind: ActionTimeout, Duration: d}
}

// TrackedUsers reports how many users currently hold a strike record,
// including records whose window already lapsed.
func (t *Tracker) TrackedUsers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
