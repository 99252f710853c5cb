package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"guild_warden/pkg/config"
	"guild_warden/pkg/escalation"
)

// Guard enforces the anti-ping policy: non-exempt members who ping a
// protected role, or a member holding one, lose the message and climb
// the escalation ladder. The escalation state advances even when the
// punitive delivery fails; only the delivery is best-effort.
type Guard struct {
	tracker            *escalation.Tracker
	mod                Moderator
	protectedRoles     []string
	bypassRoles        []string
	infractionsChannel string
	logger             *zap.Logger
}

// NewGuard creates an anti-ping guard. Holders of a protected or bypass
// role are exempt.
func NewGuard(tracker *escalation.Tracker, mod Moderator, roles config.RolesConfig, channels config.ChannelsConfig, logger *zap.Logger) *Guard {
	return &Guard{
		tracker:            tracker,
		mod:                mod,
		protectedRoles:     roles.Protected,
		bypassRoles:        roles.Bypass,
		infractionsChannel: channels.Infractions,
		logger:             logger,
	}
}

// exempt reports whether the author may ping protected roles.
func (g *Guard) exempt(authorRoles []string) bool {
	return len(lo.Intersect(g.protectedRoles, authorRoles)) > 0 ||
		len(lo.Intersect(g.bypassRoles, authorRoles)) > 0
}

// violates reports whether the mention touched anything protected.
func (g *Guard) violates(m Mention) bool {
	if len(lo.Intersect(g.protectedRoles, m.MentionedRoles)) > 0 {
		return true
	}
	for _, roles := range m.MentionedUsers {
		if len(lo.Intersect(g.protectedRoles, roles)) > 0 {
			return true
		}
	}
	return false
}

// HandleMention runs the full anti-ping sequence for one observed
// message. It returns the escalation level applied, or zero when the
// message was fine.
func (g *Guard) HandleMention(ctx context.Context, m Mention) int {
	if g.exempt(m.AuthorRoles) || !g.violates(m) {
		return 0
	}

	// Delivery steps are best-effort; the offense count below is the
	// authoritative state change.
	if err := g.mod.DeleteMessage(ctx, m.ChannelID, m.MessageID); err != nil {
		g.logger.Warn("Deleting ping message failed",
			zap.String("messageID", m.MessageID),
			zap.Error(err))
	}

	level := g.tracker.RegisterOffense(m.AuthorID, m.At)
	action := g.tracker.ActionForLevel(level)

	g.logger.Info("Anti-ping offense registered",
		zap.String("authorID", m.AuthorID),
		zap.Int("level", level),
		zap.String("action", string(action.Kind)),
		zap.Duration("timeout", action.Duration))

	notice := fmt.Sprintf(
		"Please avoid pinging protected role holders. Continued violations escalate automatically (level %d).",
		level)
	if err := g.mod.NotifyChannel(ctx, m.ChannelID, notice); err != nil {
		g.logger.Warn("Posting anti-ping notice failed", zap.Error(err))
	}

	if action.Kind == escalation.ActionTimeout {
		reason := fmt.Sprintf("anti-ping escalation level %d", level)
		if err := g.mod.Timeout(ctx, m.AuthorID, action.Duration, reason); err != nil {
			// The tracker already advanced; never roll it back on a
			// delivery failure.
			g.logger.Warn("Timeout delivery failed",
				zap.String("authorID", m.AuthorID),
				zap.Duration("timeout", action.Duration),
				zap.Error(err))
			fallback := fmt.Sprintf(
				"Would have escalated to a %d minute timeout but lack permission.",
				int(action.Duration/time.Minute))
			if err := g.mod.NotifyChannel(ctx, m.ChannelID, fallback); err != nil {
				g.logger.Warn("Posting fallback notice failed", zap.Error(err))
			}
		}
	}

	rec := Infraction{
		Kind:     string(action.Kind),
		TargetID: m.AuthorID,
		Reason:   "pinged a protected role or member",
		Duration: action.Duration,
		IssuedAt: m.At,
	}
	if err := g.mod.PostInfraction(ctx, rec); err != nil {
		g.logger.Warn("Posting infraction record failed", zap.Error(err))
	}

	return level
}

// TrackedUsers exposes the tracker population for stats reporting.
func (g *Guard) TrackedUsers() int {
	return g.tracker.TrackedUsers()
}
