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

// ErrDuplicateReaction is returned when an insert loses a first-reaction race
// against a concurrent request for the same (user, target) pair.
var ErrDuplicateReaction = errors.New("reaction already exists for this user and target")

// ReactionRepository defines the interface for reaction data operations.
// It is the only component allowed to mutate reaction documents.
type ReactionRepository interface {
	EnsureIndexes(ctx context.Context) error
	Find(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (*models.Reaction, error)
	Insert(ctx context.Context, userID uint, targetType models.TargetType, targetID string, kind models.ReactionKind) (*models.Reaction, error)
	UpdateKind(ctx context.Context, userID uint, targetType models.TargetType, targetID string, kind models.ReactionKind) (*models.Reaction, error)
	Remove(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (bool, error)
	CountByKind(ctx context.Context, targetType models.TargetType, targetID string, kind models.ReactionKind) (int64, error)
	GetLikedVideos(ctx context.Context, userID uint) ([]models.Reaction, error)
}

// MongoReactionRepository implements ReactionRepository for MongoDB
type MongoReactionRepository struct {
	collection *mongo.Collection
}

// NewMongoReactionRepository creates a new MongoReactionRepository
func NewMongoReactionRepository(db *mongo.Database) *MongoReactionRepository {
	return &MongoReactionRepository{collection: db.Collection("reactions")}
}

// targetField maps a target type to the document field holding its ObjectID
func targetField(t models.TargetType) string {
	switch t {
	case models.TargetComment:
		return "comment"
	case models.TargetTweet:
		return "tweet"
	default:
		return "video"
	}
}

func reactionFilter(userID uint, targetType models.TargetType, targetID string) (bson.M, error) {
	objID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, fmt.Errorf("invalid %s ID format: %w", targetType, err)
	}
	return bson.M{"liked_by": userID, targetField(targetType): objID}, nil
}

// EnsureIndexes creates one partial unique index per target type so that a
// user can hold at most one reaction per video, per comment and per tweet.
// A reaction document only carries one of the three target fields, which is
// why a single compound index cannot cover all of them.
func (r *MongoReactionRepository) EnsureIndexes(ctx context.Context) error {
	for _, field := range []string{"video", "comment", "tweet"} {
		_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "liked_by", Value: 1}, {Key: field, Value: 1}},
			Options: options.Index().
				SetName("uniq_liked_by_" + field).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{field: bson.M{"$exists": true}}),
		})
		if err != nil {
			return fmt.Errorf("failed to create reaction index on %s: %w", field, err)
		}
	}
	return nil
}

// Find retrieves the user's reaction on a target, or nil if there is none
func (r *MongoReactionRepository) Find(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (*models.Reaction, error) {
	filter, err := reactionFilter(userID, targetType, targetID)
	if err != nil {
		return nil, err
	}

	var reaction models.Reaction
	err = r.collection.FindOne(ctx, filter).Decode(&reaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &reaction, nil
}

// Insert creates a first-time reaction. A duplicate-key violation from the
// unique index is reported as ErrDuplicateReaction so the caller can re-read
// and proceed as an update.
func (r *MongoReactionRepository) Insert(ctx context.Context, userID uint, targetType models.TargetType, targetID string, kind models.ReactionKind) (*models.Reaction, error) {
	objID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, fmt.Errorf("invalid %s ID format: %w", targetType, err)
	}

	now := time.Now()
	reaction := &models.Reaction{
		ID:        primitive.NewObjectID(),
		LikedBy:   userID,
		Type:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch targetType {
	case models.TargetComment:
		reaction.Comment = &objID
	case models.TargetTweet:
		reaction.Tweet = &objID
	default:
		reaction.Video = &objID
	}

	if _, err := r.collection.InsertOne(ctx, reaction); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateReaction
		}
		return nil, err
	}
	return reaction, nil
}

// UpdateKind flips the kind of an existing reaction in place and returns the
// updated document. Updating in place avoids the transient zero-row window a
// delete-then-recreate would expose to concurrent count reads.
func (r *MongoReactionRepository) UpdateKind(ctx context.Context, userID uint, targetType models.TargetType, targetID string, kind models.ReactionKind) (*models.Reaction, error) {
	filter, err := reactionFilter(userID, targetType, targetID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{"type": kind, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var reaction models.Reaction
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&reaction)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reaction not found")
		}
		return nil, err
	}
	return &reaction, nil
}

// Remove deletes the user's reaction on a target. Returns false when there
// was nothing to delete.
func (r *MongoReactionRepository) Remove(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (bool, error) {
	filter, err := reactionFilter(userID, targetType, targetID)
	if err != nil {
		return false, err
	}

	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// CountByKind counts reactions of one kind on a target
func (r *MongoReactionRepository) CountByKind(ctx context.Context, targetType models.TargetType, targetID string, kind models.ReactionKind) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return 0, fmt.Errorf("invalid %s ID format: %w", targetType, err)
	}
	return r.collection.CountDocuments(ctx, bson.M{targetField(targetType): objID, "type": kind})
}

// GetLikedVideos retrieves all video likes by a user, newest first
func (r *MongoReactionRepository) GetLikedVideos(ctx context.Context, userID uint) ([]models.Reaction, error) {
	filter := bson.M{
		"liked_by": userID,
		"type":     models.KindLike,
		"video":    bson.M{"$exists": true},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reactions []models.Reaction
	if err = cursor.All(ctx, &reactions); err != nil {
		return nil, err
	}
	return reactions, nil
}
