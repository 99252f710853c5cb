package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"guild_warden/pkg/config"
)

// Actions implements the staff-gated manual moderation commands. Each
// action DMs the target best-effort, applies the platform action, and
// posts an infraction record.
type Actions struct {
	mod        Moderator
	staffRoles []string
	logger     *zap.Logger
	now        func() time.Time
}

// NewActions creates the manual moderation command set.
func NewActions(mod Moderator, roles config.RolesConfig, logger *zap.Logger) *Actions {
	return &Actions{
		mod:        mod,
		staffRoles: roles.Staff,
		logger:     logger,
		now:        time.Now,
	}
}

func (a *Actions) requireStaff(actorRoles []string) error {
	if len(lo.Intersect(a.staffRoles, actorRoles)) == 0 {
		return ErrNotStaff
	}
	return nil
}

// Warn notifies the target and logs the warning. No platform punishment
// is applied.
func (a *Actions) Warn(ctx context.Context, actorID string, actorRoles []string, targetID, reason string) error {
	if err := a.requireStaff(actorRoles); err != nil {
		return err
	}

	a.dm(ctx, targetID, fmt.Sprintf("You have been warned. Reason: %s", orNoReason(reason)))
	a.record(ctx, Infraction{
		Kind:        "warn",
		TargetID:    targetID,
		ModeratorID: actorID,
		Reason:      orNoReason(reason),
		IssuedAt:    a.now(),
	})
	return nil
}

// Timeout mutes the target for the given duration.
func (a *Actions) Timeout(ctx context.Context, actorID string, actorRoles []string, targetID string, d time.Duration, reason string) error {
	if err := a.requireStaff(actorRoles); err != nil {
		return err
	}

	a.dm(ctx, targetID, fmt.Sprintf("You have been timed out for %s. Reason: %s", d, orNoReason(reason)))
	if err := a.mod.Timeout(ctx, targetID, d, reason); err != nil {
		return fmt.Errorf("applying timeout: %w", err)
	}
	a.record(ctx, Infraction{
		Kind:        "timeout",
		TargetID:    targetID,
		ModeratorID: actorID,
		Reason:      orNoReason(reason),
		Duration:    d,
		IssuedAt:    a.now(),
	})
	return nil
}

// ClearTimeout lifts an active timeout.
func (a *Actions) ClearTimeout(ctx context.Context, actorID string, actorRoles []string, targetID string) error {
	if err := a.requireStaff(actorRoles); err != nil {
		return err
	}

	if err := a.mod.ClearTimeout(ctx, targetID, "cleared by "+actorID); err != nil {
		return fmt.Errorf("clearing timeout: %w", err)
	}
	a.record(ctx, Infraction{
		Kind:        "clear-timeout",
		TargetID:    targetID,
		ModeratorID: actorID,
		IssuedAt:    a.now(),
	})
	return nil
}

// Kick removes the target from the community.
func (a *Actions) Kick(ctx context.Context, actorID string, actorRoles []string, targetID, reason string) error {
	if err := a.requireStaff(actorRoles); err != nil {
		return err
	}

	// The DM must go out before the kick; afterwards there is no shared
	// surface left to deliver it on.
	a.dm(ctx, targetID, fmt.Sprintf("You were kicked. Reason: %s", orNoReason(reason)))
	if err := a.mod.Kick(ctx, targetID, reason); err != nil {
		return fmt.Errorf("kicking member: %w", err)
	}
	a.record(ctx, Infraction{
		Kind:        "kick",
		TargetID:    targetID,
		ModeratorID: actorID,
		Reason:      orNoReason(reason),
		IssuedAt:    a.now(),
	})
	return nil
}

// Ban permanently removes the target, optionally purging recent
// messages.
func (a *Actions) Ban(ctx context.Context, actorID string, actorRoles []string, targetID, reason string, purgeDays int) error {
	if err := a.requireStaff(actorRoles); err != nil {
		return err
	}

	a.dm(ctx, targetID, fmt.Sprintf("You were banned. Reason: %s", orNoReason(reason)))
	if err := a.mod.Ban(ctx, targetID, reason, purgeDays); err != nil {
		return fmt.Errorf("banning member: %w", err)
	}
	a.record(ctx, Infraction{
		Kind:        "ban",
		TargetID:    targetID,
		ModeratorID: actorID,
		Reason:      orNoReason(reason),
		IssuedAt:    a.now(),
	})
	return nil
}

// Promote posts a promotion announcement.
func (a *Actions) Promote(ctx context.Context, actorID string, actorRoles []string, targetID, newRole, reason string) error {
	if err := a.requireStaff(actorRoles); err != nil {
		return err
	}

	ann := Promotion{
		TargetID: targetID,
		ActorID:  actorID,
		NewRole:  newRole,
		Reason:   reason,
		IssuedAt: a.now(),
	}
	if err := a.mod.PostPromotion(ctx, ann); err != nil {
		return fmt.Errorf("posting promotion: %w", err)
	}
	return nil
}

func (a *Actions) dm(ctx context.Context, userID, text string) {
	if err := a.mod.DirectMessage(ctx, userID, text); err != nil {
		a.logger.Debug("Direct message failed",
			zap.String("userID", userID),
			zap.Error(err))
	}
}

func (a *Actions) record(ctx context.Context, rec Infraction) {
	if err := a.mod.PostInfraction(ctx, rec); err != nil {
		a.logger.Warn("Posting infraction record failed",
			zap.String("kind", rec.Kind),
			zap.Error(err))
	}
}

func orNoReason(reason string) string {
	if reason == "" {
		return "No reason provided"
	}
	return reason
}
