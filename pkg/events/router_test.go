package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"guild_warden/pkg/config"
	"guild_warden/pkg/escalation"
	"guild_warden/pkg/moderation"
	"guild_warden/pkg/platform"
	"guild_warden/pkg/poll"
	"guild_warden/pkg/schedule"
	"guild_warden/pkg/ticket"
)

func newTestRouter(t *testing.T) (*Router, *poll.Engine, *ticket.Workflow) {
	logger := zaptest.NewLogger(t)
	adapter := platform.NewDryRun(logger)

	scheduler := schedule.NewScheduler(logger)
	t.Cleanup(scheduler.Stop)

	polls := poll.NewEngine(adapter, scheduler, logger)
	tickets := ticket.NewWorkflow(config.TicketConfig{
		Categories: map[string]config.TicketCategory{
			"support": {Destination: "ticket-archive"},
		},
	}, []string{"role-staff"}, adapter, logger)
	tracker := escalation.NewTracker(config.EscalationConfig{}, zaptest.NewLogger(t))
	guard := moderation.NewGuard(tracker, adapter, config.RolesConfig{
		Protected: []string{"role-slt"},
	}, config.ChannelsConfig{}, logger)

	return NewRouter(polls, tickets, guard, logger), polls, tickets
}

func TestRouter_HandleVoteCast(t *testing.T) {
	router, polls, _ := newTestRouter(t)
	ctx := context.Background()

	snap, err := polls.Create(ctx, poll.CreateParams{
		Question: "q",
		Options:  []string{"a", "b"},
		Duration: time.Hour,
	})
	require.NoError(t, err)

	router.handle(ctx, VoteCast{PollID: snap.ID, UserID: "user", Option: 1})

	assert.Equal(t, int64(1), polls.GetStats().VotesApplied)
}

func TestRouter_HandleTicketLifecycle(t *testing.T) {
	router, _, tickets := newTestRouter(t)
	ctx := context.Background()

	router.handle(ctx, TicketCategorySelected{ActorID: "opener", Key: "support"})
	require.Equal(t, 1, tickets.GetStats().OpenTickets)

	// Rejections are absorbed by the router, not propagated.
	router.handle(ctx, ClaimRequested{TicketID: "no-such-ticket", ActorID: "staffer"})
	assert.Equal(t, 1, tickets.GetStats().OpenTickets)
}

func TestRouter_HandleMentionObserved(t *testing.T) {
	router, _, _ := newTestRouter(t)

	router.handle(context.Background(), MentionObserved{
		AuthorID:       "member",
		MentionedRoles: []string{"role-slt"},
		At:             time.Now(),
	})

	assert.Equal(t, 1, router.guard.TrackedUsers())
}

func TestRouter_RunDrainsInbox(t *testing.T) {
	router, polls, _ := newTestRouter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snap, err := polls.Create(ctx, poll.CreateParams{
		Question: "q",
		Options:  []string{"a", "b"},
		Duration: time.Hour,
	})
	require.NoError(t, err)

	go router.Run(ctx)

	require.True(t, router.Dispatch(VoteCast{PollID: snap.ID, UserID: "u1", Option: 0}))
	require.True(t, router.Dispatch(VoteCast{PollID: snap.ID, UserID: "u2", Option: 1}))

	assert.Eventually(t, func() bool {
		return polls.GetStats().VotesApplied == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRouter_DispatchDropsWhenFull(t *testing.T) {
	router, _, _ := newTestRouter(t)

	// Nothing drains the inbox here.
	for i := 0; i < defaultInboxSize; i++ {
		require.True(t, router.Dispatch(SessionStopRequested{ActorID: "staffer"}))
	}
	assert.False(t, router.Dispatch(SessionStopRequested{ActorID: "staffer"}))
}
