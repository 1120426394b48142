package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is the reactable video entity (MongoDB). Upload, metadata editing and
// playback live in their own handlers; the reaction engine only needs the
// owner and existence.
type Video struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   uint               `bson:"owner_id" json:"owner_id"`
	Title     string             `bson:"title" json:"title"`
	Thumbnail string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Duration  float64            `bson:"duration,omitempty" json:"duration,omitempty"`
	Views     int64              `bson:"views" json:"views"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Comment is a comment on a video (MongoDB)
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   uint               `bson:"owner_id" json:"owner_id"`
	Video     primitive.ObjectID `bson:"video" json:"video"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Tweet is a short text post (MongoDB)
type Tweet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   uint               `bson:"owner_id" json:"owner_id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
