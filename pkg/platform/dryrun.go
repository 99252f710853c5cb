// Package platform holds adapters for the warden's outbound ports. The
// dry-run adapter logs every side effect instead of delivering it, which
// is what the binary runs with until a real chat gateway is wired in.
package platform

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"guild_warden/pkg/moderation"
	"guild_warden/pkg/poll"
	"guild_warden/pkg/ticket"
)

// DryRun implements the Presenter, Surface, and Moderator ports by
// logging the requested action.
type DryRun struct {
	logger *zap.Logger
}

// NewDryRun creates a dry-run platform adapter.
func NewDryRun(logger *zap.Logger) *DryRun {
	return &DryRun{logger: logger.Named("platform")}
}

// --- poll.Presenter ---

func (d *DryRun) RenderPoll(_ context.Context, snap *poll.Snapshot) (poll.SurfaceHandle, error) {
	handle := poll.SurfaceHandle(uuid.New().String())
	d.logger.Info("render poll",
		zap.String("pollID", snap.ID),
		zap.String("question", snap.Question))
	return handle, nil
}

func (d *DryRun) UpdatePoll(_ context.Context, handle poll.SurfaceHandle, snap *poll.Snapshot) error {
	d.logger.Info("update poll",
		zap.String("surface", string(handle)),
		zap.Ints("tally", snap.Tally),
		zap.Bool("ended", snap.Ended))
	return nil
}

func (d *DryRun) DisableInteraction(_ context.Context, handle poll.SurfaceHandle) error {
	d.logger.Info("disable poll interaction", zap.String("surface", string(handle)))
	return nil
}

// --- ticket.Surface ---

func (d *DryRun) CreateRestrictedSurface(_ context.Context, name string, participants []string, roleAllowList []string) (ticket.SurfaceHandle, error) {
	handle := ticket.SurfaceHandle(uuid.New().String())
	d.logger.Info("create restricted surface",
		zap.String("name", name),
		zap.Strings("participants", participants),
		zap.Strings("roles", roleAllowList))
	return handle, nil
}

func (d *DryRun) FetchHistory(_ context.Context, handle ticket.SurfaceHandle) ([]ticket.HistoryEntry, error) {
	d.logger.Info("fetch history", zap.String("surface", string(handle)))
	return nil, nil
}

func (d *DryRun) PostArchive(_ context.Context, destination string, transcript string, metadata map[string]string) error {
	d.logger.Info("post archive",
		zap.String("destination", destination),
		zap.Int("transcriptBytes", len(transcript)),
		zap.Any("metadata", metadata))
	return nil
}

func (d *DryRun) NotifyUser(_ context.Context, userID string, text string) error {
	d.logger.Info("notify user", zap.String("userID", userID), zap.String("text", text))
	return nil
}

func (d *DryRun) Destroy(_ context.Context, handle ticket.SurfaceHandle) error {
	d.logger.Info("destroy surface", zap.String("surface", string(handle)))
	return nil
}

// --- moderation.Moderator ---

func (d *DryRun) DeleteMessage(_ context.Context, channelID, messageID string) error {
	d.logger.Info("delete message",
		zap.String("channelID", channelID),
		zap.String("messageID", messageID))
	return nil
}

func (d *DryRun) NotifyChannel(_ context.Context, channelID, text string) error {
	d.logger.Info("notify channel",
		zap.String("channelID", channelID),
		zap.String("text", text))
	return nil
}

func (d *DryRun) DirectMessage(_ context.Context, userID, text string) error {
	d.logger.Info("direct message", zap.String("userID", userID), zap.String("text", text))
	return nil
}

func (d *DryRun) Timeout(_ context.Context, userID string, duration time.Duration, reason string) error {
	d.logger.Info("timeout member",
		zap.String("userID", userID),
		zap.Duration("duration", duration),
		zap.String("reason", reason))
	return nil
}

func (d *DryRun) ClearTimeout(_ context.Context, userID, reason string) error {
	d.logger.Info("clear timeout", zap.String("userID", userID), zap.String("reason", reason))
	return nil
}

func (d *DryRun) Kick(_ context.Context, userID, reason string) error {
	d.logger.Info("kick member", zap.String("userID", userID), zap.String("reason", reason))
	return nil
}

func (d *DryRun) Ban(_ context.Context, userID, reason string, purgeDays int) error {
	d.logger.Info("ban member",
		zap.String("userID", userID),
		zap.String("reason", reason),
		zap.Int("purgeDays", purgeDays))
	return nil
}

func (d *DryRun) PostInfraction(_ context.Context, rec moderation.Infraction) error {
	d.logger.Info("post infraction",
		zap.String("kind", rec.Kind),
		zap.String("targetID", rec.TargetID),
		zap.Duration("duration", rec.Duration))
	return nil
}

func (d *DryRun) PostPromotion(_ context.Context, ann moderation.Promotion) error {
	d.logger.Info("post promotion",
		zap.String("targetID", ann.TargetID),
		zap.String("newRole", ann.NewRole))
	return nil
}
