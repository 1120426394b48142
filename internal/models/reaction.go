package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetType identifies which kind of entity a reaction points at.
type TargetType string

const (
	TargetVideo   TargetType = "video"
	TargetComment TargetType = "comment"
	TargetTweet   TargetType = "tweet"
)

// ParseTargetType converts a path/query value into a TargetType
func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(s) {
	case TargetVideo, TargetComment, TargetTweet:
		return TargetType(s), nil
	}
	return "", fmt.Errorf("unknown target type %q", s)
}

// ReactionKind is the polarity of a reaction
type ReactionKind string

const (
	KindLike    ReactionKind = "like"
	KindDislike ReactionKind = "dislike"
)

// ParseReactionKind converts a request value into a ReactionKind
func ParseReactionKind(s string) (ReactionKind, error) {
	switch ReactionKind(s) {
	case KindLike, KindDislike:
		return ReactionKind(s), nil
	}
	return "", fmt.Errorf("unknown reaction kind %q", s)
}

// ReactionState is the resulting state of an actor on a target after a toggle
type ReactionState string

const (
	StateNone     ReactionState = "none"
	StateLiked    ReactionState = "liked"
	StateDisliked ReactionState = "disliked"
)

// StateForKind maps a stored reaction kind to the user-facing state
func StateForKind(kind ReactionKind) ReactionState {
	if kind == KindLike {
		return StateLiked
	}
	return StateDisliked
}

// Reaction represents one user's reaction to a video, comment or tweet (MongoDB).
// Exactly one of Video/Comment/Tweet is set; a partial unique index over
// (liked_by, <target field>) guarantees at most one reaction per user per target.
type Reaction struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LikedBy   uint                `bson:"liked_by" json:"liked_by"`
	Video     *primitive.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	Comment   *primitive.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	Tweet     *primitive.ObjectID `bson:"tweet,omitempty" json:"tweet,omitempty"`
	Type      ReactionKind        `bson:"type" json:"type"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// TargetRef returns the target type and id this reaction points at
func (r *Reaction) TargetRef() (TargetType, string) {
	switch {
	case r.Video != nil:
		return TargetVideo, r.Video.Hex()
	case r.Comment != nil:
		return TargetComment, r.Comment.Hex()
	case r.Tweet != nil:
		return TargetTweet, r.Tweet.Hex()
	}
	return "", ""
}

// ReactRequest defines the request body for toggling a reaction
type ReactRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like dislike"`
}

// ReactResponse is the result of a toggle call
type ReactResponse struct {
	State        ReactionState `json:"state"`
	LikeCount    int64         `json:"like_count"`
	DislikeCount int64         `json:"dislike_count"`
	Message      string        `json:"message"`
}

// AggregateCount holds the live like/dislike totals for one target
type AggregateCount struct {
	TargetType   TargetType `json:"target_type"`
	TargetID     string     `json:"target_id"`
	LikeCount    int64      `json:"like_count"`
	DislikeCount int64      `json:"dislike_count"`
}
