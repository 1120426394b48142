package services

import (
	"context"
	"fmt"

	"github.com/tanvir09/vidtube/backend/internal/models"
	"github.com/tanvir09/vidtube/backend/internal/realtime"
	"github.com/tanvir09/vidtube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationDispatcher turns qualifying reaction events into durable
// notifications and pushes them to the recipient's live channel. All of its
// failures are logged and swallowed: notifications are an enhancement, never
// part of the reaction's correctness contract.
type NotificationDispatcher struct {
	notifications repositories.NotificationRepository
	targets       *repositories.TargetDirectory
	users         repositories.UserRepository
	broadcaster   realtime.Broadcaster
	logger        *zap.Logger
}

// NewNotificationDispatcher creates a new NotificationDispatcher
func NewNotificationDispatcher(
	notificationRepo repositories.NotificationRepository,
	targets *repositories.TargetDirectory,
	userRepo repositories.UserRepository,
	broadcaster realtime.Broadcaster,
	logger *zap.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifications: notificationRepo,
		targets:       targets,
		users:         userRepo,
		broadcaster:   broadcaster,
		logger:        logger,
	}
}

// NotifyLike notifies the target's owner that sender liked their video,
// comment or tweet. Invoked only on transitions into Liked; no-ops when the
// sender reacts to their own content.
func (d *NotificationDispatcher) NotifyLike(ctx context.Context, sender uint, targetType models.TargetType, targetID string) {
	repo, ok := d.targets.ForType(targetType)
	if !ok {
		d.logger.Error("no collaborator for target type", zap.String("target_type", string(targetType)))
		return
	}

	owner, err := repo.OwnerOf(ctx, targetID)
	if err != nil {
		d.logger.Warn("failed to resolve target owner for notification",
			zap.String("target_type", string(targetType)),
			zap.String("target_id", targetID),
			zap.Error(err))
		return
	}
	if owner == sender {
		return
	}

	senderName, err := d.users.DisplayName(ctx, sender)
	if err != nil || senderName == "" {
		senderName = "Someone"
	}

	objID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		d.logger.Warn("invalid target id for notification", zap.String("target_id", targetID), zap.Error(err))
		return
	}

	notification := &models.Notification{
		Recipient: owner,
		Sender:    sender,
		Type:      models.LikeNotificationType(targetType),
		Message:   fmt.Sprintf("%s liked your %s", senderName, targetType),
	}
	switch targetType {
	case models.TargetComment:
		notification.Comment = &objID
	case models.TargetTweet:
		notification.Tweet = &objID
	default:
		notification.Video = &objID
	}

	if err := d.notifications.Create(ctx, notification); err != nil {
		d.logger.Error("failed to store like notification",
			zap.Uint("recipient", owner),
			zap.Uint("sender", sender),
			zap.Error(err))
		return
	}

	if err := d.broadcaster.PublishNotification(ctx, owner, notification); err != nil {
		d.logger.Warn("failed to push notification to live channel",
			zap.Uint("recipient", owner),
			zap.Error(err))
	}
}

// Retract removes the notification created by the sender's like on a target,
// if any. Invoked on toggle-off; absence of a matching notification is fine.
func (d *NotificationDispatcher) Retract(ctx context.Context, sender uint, targetType models.TargetType, targetID string) {
	if err := d.notifications.DeleteForReaction(ctx, sender, targetType, targetID); err != nil {
		d.logger.Warn("failed to retract like notification",
			zap.Uint("sender", sender),
			zap.String("target_type", string(targetType)),
			zap.String("target_id", targetID),
			zap.Error(err))
	}
}
