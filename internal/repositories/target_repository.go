package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/tanvir09/vidtube/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TargetRepository resolves existence and ownership for one reactable entity
// type. Video, comment and tweet CRUD is owned by their own handlers; the
// reaction engine only consumes these two lookups.
type TargetRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	OwnerOf(ctx context.Context, id string) (uint, error)
}

// MongoTargetRepository implements TargetRepository over a single collection
// whose documents carry an owner_id field
type MongoTargetRepository struct {
	collection *mongo.Collection
}

// NewMongoVideoRepository creates a TargetRepository over the videos collection
func NewMongoVideoRepository(db *mongo.Database) *MongoTargetRepository {
	return &MongoTargetRepository{collection: db.Collection("videos")}
}

// NewMongoCommentRepository creates a TargetRepository over the comments collection
func NewMongoCommentRepository(db *mongo.Database) *MongoTargetRepository {
	return &MongoTargetRepository{collection: db.Collection("comments")}
}

// NewMongoTweetRepository creates a TargetRepository over the tweets collection
func NewMongoTweetRepository(db *mongo.Database) *MongoTargetRepository {
	return &MongoTargetRepository{collection: db.Collection("tweets")}
}

// Exists reports whether a document with the given ID exists
func (r *MongoTargetRepository) Exists(ctx context.Context, id string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("invalid ID format: %w", err)
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// OwnerOf retrieves the owning user's ID for a document
func (r *MongoTargetRepository) OwnerOf(ctx context.Context, id string) (uint, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, fmt.Errorf("invalid ID format: %w", err)
	}

	var doc struct {
		OwnerID uint `bson:"owner_id"`
	}
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, fmt.Errorf("target not found")
		}
		return 0, err
	}
	return doc.OwnerID, nil
}

// TargetDirectory groups the per-type collaborators behind a single lookup
type TargetDirectory struct {
	Videos   TargetRepository
	Comments TargetRepository
	Tweets   TargetRepository
}

// ForType returns the collaborator for a target type
func (d *TargetDirectory) ForType(t models.TargetType) (TargetRepository, bool) {
	switch t {
	case models.TargetVideo:
		return d.Videos, d.Videos != nil
	case models.TargetComment:
		return d.Comments, d.Comments != nil
	case models.TargetTweet:
		return d.Tweets, d.Tweets != nil
	}
	return nil, false
}
