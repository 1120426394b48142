package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tanvir09/vidtube/backend/internal/models"
)

// Event is the wire envelope published on realtime channels
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

const (
	// EventCounts carries updated like/dislike totals for one target
	EventCounts = "counts"
	// EventNotification carries a freshly created notification
	EventNotification = "notification"
)

// CountsChannel is the pub/sub channel carrying counter updates for a target
func CountsChannel(targetType models.TargetType, targetID string) string {
	return fmt.Sprintf("reactions:%s:%s", targetType, targetID)
}

// NotificationChannel is the private pub/sub channel for a user's notifications
func NotificationChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// Broadcaster pushes reaction engine events to live observers. Delivery is
// fire-and-forget: a failed publish never affects the reaction itself, and
// an offline recipient still sees the durable record on the next poll.
type Broadcaster interface {
	PublishCounts(ctx context.Context, targetType models.TargetType, targetID string, likeCount, dislikeCount int64) error
	PublishNotification(ctx context.Context, recipient uint, notification *models.Notification) error
}

// RedisBroadcaster implements Broadcaster over Redis pub/sub so counter and
// notification events reach every connected node, not just the one that
// handled the request
type RedisBroadcaster struct {
	rdb *redis.Client
}

// NewRedisBroadcaster creates a new RedisBroadcaster
func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

// PublishCounts publishes updated totals on the target's channel
func (b *RedisBroadcaster) PublishCounts(ctx context.Context, targetType models.TargetType, targetID string, likeCount, dislikeCount int64) error {
	payload, err := json.Marshal(Event{
		Event: EventCounts,
		Data: models.AggregateCount{
			TargetType:   targetType,
			TargetID:     targetID,
			LikeCount:    likeCount,
			DislikeCount: dislikeCount,
		},
	})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, CountsChannel(targetType, targetID), payload).Err()
}

// PublishNotification publishes a notification on the recipient's private channel
func (b *RedisBroadcaster) PublishNotification(ctx context.Context, recipient uint, notification *models.Notification) error {
	payload, err := json.Marshal(Event{Event: EventNotification, Data: notification})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, NotificationChannel(recipient), payload).Err()
}
