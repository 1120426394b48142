package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tanvir09/vidtube/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotificationNotFound is returned when a mark-read targets a notification
// that does not exist or belongs to another user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	DeleteForReaction(ctx context.Context, sender uint, targetType models.TargetType, targetID string) error
	GetByRecipient(ctx context.Context, recipient uint, page, limit int64) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipient uint) (int64, error)
	MarkAsRead(ctx context.Context, id string, recipient uint) error
	MarkAllAsRead(ctx context.Context, recipient uint) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// Create stores a new notification
func (r *MongoNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// DeleteForReaction removes the like notification that a given sender's
// reaction on a target produced, if any. Called when the reaction is toggled
// off so no stale "X liked your Y" notice survives the unlike. Deleting zero
// documents is not an error.
func (r *MongoNotificationRepository) DeleteForReaction(ctx context.Context, sender uint, targetType models.TargetType, targetID string) error {
	objID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return fmt.Errorf("invalid %s ID format: %w", targetType, err)
	}

	filter := bson.M{
		"sender": sender,
		"type":   models.LikeNotificationType(targetType),
	}
	filter[targetField(targetType)] = objID
	_, err = r.collection.DeleteMany(ctx, filter)
	return err
}

// GetByRecipient retrieves a page of the user's notifications, newest first,
// along with the total count
func (r *MongoNotificationRepository) GetByRecipient(ctx context.Context, recipient uint, page, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient": recipient}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSkip((page - 1) * limit).
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// GetUnreadCount counts the user's unread notifications
func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, recipient uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient": recipient, "is_read": false})
}

// MarkAsRead marks one of the user's notifications as read
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id string, recipient uint) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "recipient": recipient},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks all of the user's notifications as read
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipient uint) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": recipient, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	return err
}
