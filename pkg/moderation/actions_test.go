package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"guild_warden/pkg/config"
)

func newTestActions(t *testing.T) (*Actions, *fakeModerator) {
	mod := &fakeModerator{}
	actions := NewActions(mod, config.RolesConfig{Staff: []string{"role-staff"}}, zaptest.NewLogger(t))
	return actions, mod
}

var staff = []string{"role-staff", "role-member"}

func TestActions_StaffGate(t *testing.T) {
	actions, mod := newTestActions(t)
	ctx := context.Background()

	assert.ErrorIs(t, actions.Warn(ctx, "rando", []string{"role-member"}, "target", "spam"), ErrNotStaff)
	assert.ErrorIs(t, actions.Kick(ctx, "rando", nil, "target", ""), ErrNotStaff)
	assert.ErrorIs(t, actions.Ban(ctx, "rando", nil, "target", "", 0), ErrNotStaff)
	assert.ErrorIs(t, actions.Timeout(ctx, "rando", nil, "target", time.Minute, ""), ErrNotStaff)
	assert.ErrorIs(t, actions.Promote(ctx, "rando", nil, "target", "Moderator", ""), ErrNotStaff)
	assert.Empty(t, mod.infractions)
}

func TestActions_Warn(t *testing.T) {
	actions, mod := newTestActions(t)

	require.NoError(t, actions.Warn(context.Background(), "mod-1", staff, "target", ""))

	assert.Equal(t, []string{"target"}, mod.dms)
	require.Len(t, mod.infractions, 1)
	assert.Equal(t, "warn", mod.infractions[0].Kind)
	assert.Equal(t, "No reason provided", mod.infractions[0].Reason)
	assert.Equal(t, "mod-1", mod.infractions[0].ModeratorID)
}

func TestActions_Timeout(t *testing.T) {
	actions, mod := newTestActions(t)

	require.NoError(t, actions.Timeout(context.Background(), "mod-1", staff, "target", 10*time.Minute, "flooding"))

	assert.Equal(t, []time.Duration{10 * time.Minute}, mod.timeouts)
	require.Len(t, mod.infractions, 1)
	assert.Equal(t, 10*time.Minute, mod.infractions[0].Duration)
}

func TestActions_KickAndBan(t *testing.T) {
	actions, mod := newTestActions(t)
	ctx := context.Background()

	require.NoError(t, actions.Kick(ctx, "mod-1", staff, "target-a", "spam"))
	require.NoError(t, actions.Ban(ctx, "mod-1", staff, "target-b", "raids", 1))

	assert.Equal(t, []string{"target-a"}, mod.kicked)
	assert.Equal(t, []string{"target-b"}, mod.banned)
	// DMs went out before the removal.
	assert.Equal(t, []string{"target-a", "target-b"}, mod.dms)
	assert.Len(t, mod.infractions, 2)
}

func TestActions_ClearTimeout(t *testing.T) {
	actions, mod := newTestActions(t)

	require.NoError(t, actions.ClearTimeout(context.Background(), "mod-1", staff, "target"))
	assert.Equal(t, []string{"target"}, mod.cleared)
}

func TestActions_Promote(t *testing.T) {
	actions, mod := newTestActions(t)

	require.NoError(t, actions.Promote(context.Background(), "mod-1", staff, "target", "Senior Helper", "consistent work"))

	require.Len(t, mod.promotions, 1)
	assert.Equal(t, "Senior Helper", mod.promotions[0].NewRole)
	assert.Equal(t, "target", mod.promotions[0].TargetID)
}
