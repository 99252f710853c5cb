package escalation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"guild_warden/pkg/config"
)

func newTestTracker(t *testing.T) *Tracker {
	return NewTracker(config.EscalationConfig{}, zaptest.NewLogger(t))
}

func TestRegisterOffense_Ladder(t *testing.T) {
	tracker := newTestTracker(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Offenses every hour climb the ladder one level at a time.
	wantActions := []Action{
		{Kind: ActionWarn},
		{Kind: ActionTimeout, Duration: 5 * time.Minute},
		{Kind: ActionTimeout, Duration: 10 * time.Minute},
		{Kind: ActionTimeout, Duration: 20 * time.Minute},
		{Kind: ActionTimeout, Duration: 40 * time.Minute},
		{Kind: ActionTimeout, Duration: 80 * time.Minute},
	}
	for i, want := range wantActions {
		level := tracker.RegisterOffense("user-a", start.Add(time.Duration(i)*time.Hour))
		assert.Equal(t, i+1, level)
		assert.Equal(t, want, tracker.ActionForLevel(level))
	}

	// An offense after the 24h window resets to a plain warning.
	level := tracker.RegisterOffense("user-a", start.Add(25*time.Hour))
	assert.Equal(t, 1, level)
	assert.Equal(t, Action{Kind: ActionWarn}, tracker.ActionForLevel(level))
}

func TestRegisterOffense_WindowBoundary(t *testing.T) {
	tracker := newTestTracker(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tracker.RegisterOffense("user-b", start)

	// Exactly at the reset instant a fresh window begins.
	level := tracker.RegisterOffense("user-b", start.Add(24*time.Hour))
	assert.Equal(t, 1, level)
}

func TestRegisterOffense_IndependentUsers(t *testing.T) {
	tracker := newTestTracker(t)
	now := time.Now()

	assert.Equal(t, 1, tracker.RegisterOffense("user-a", now))
	assert.Equal(t, 2, tracker.RegisterOffense("user-a", now.Add(time.Minute)))
	assert.Equal(t, 1, tracker.RegisterOffense("user-b", now.Add(time.Minute)))
	assert.Equal(t, 2, tracker.TrackedUsers())
}

func TestActionForLevel_Cap(t *testing.T) {
	tracker := newTestTracker(t)

	assert.Equal(t, 120*time.Minute, tracker.ActionForLevel(7).Duration)
	assert.Equal(t, 120*time.Minute, tracker.ActionForLevel(20).Duration)
	assert.Equal(t, 120*time.Minute, tracker.ActionForLevel(200).Duration)
}

func TestActionForLevel_Pure(t *testing.T) {
	tracker := newTestTracker(t)

	before := tracker.TrackedUsers()
	tracker.ActionForLevel(5)
	tracker.ActionForLevel(1)
	assert.Equal(t, before, tracker.TrackedUsers())
}
