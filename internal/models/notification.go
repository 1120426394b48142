package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType mirrors the notification type enum used by the frontend
type NotificationType string

const (
	NotificationVideoLike      NotificationType = "videoLike"
	NotificationVideoComment   NotificationType = "videoComment"
	NotificationCommentLike    NotificationType = "commentLike"
	NotificationCommentDislike NotificationType = "commentDislike"
	NotificationTweetLike      NotificationType = "tweetLike"
	NotificationNewVideo       NotificationType = "NEW_VIDEO"
	NotificationSubscribe      NotificationType = "subscribe"
)

// LikeNotificationType returns the notification type used for a like on the
// given target type
func LikeNotificationType(t TargetType) NotificationType {
	switch t {
	case TargetComment:
		return NotificationCommentLike
	case TargetTweet:
		return NotificationTweetLike
	default:
		return NotificationVideoLike
	}
}

// Notification represents a user notification (MongoDB).
// Created as a side effect of a new like and removed again when the
// originating reaction is toggled off; mark-read is the only other mutation.
type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Recipient uint                `bson:"recipient" json:"recipient"`
	Sender    uint                `bson:"sender" json:"sender"`
	Type      NotificationType    `bson:"type" json:"type"`
	Video     *primitive.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	Comment   *primitive.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	Tweet     *primitive.ObjectID `bson:"tweet,omitempty" json:"tweet,omitempty"`
	Message   string              `bson:"message" json:"message"`
	IsRead    bool                `bson:"is_read" json:"is_read"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
