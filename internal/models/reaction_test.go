package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseTargetType(t *testing.T) {
	for _, valid := range []string{"video", "comment", "tweet"} {
		got, err := ParseTargetType(valid)
		require.NoError(t, err)
		assert.Equal(t, TargetType(valid), got)
	}

	_, err := ParseTargetType("playlist")
	assert.Error(t, err)
	_, err = ParseTargetType("")
	assert.Error(t, err)
}

func TestParseReactionKind(t *testing.T) {
	got, err := ParseReactionKind("like")
	require.NoError(t, err)
	assert.Equal(t, KindLike, got)

	got, err = ParseReactionKind("dislike")
	require.NoError(t, err)
	assert.Equal(t, KindDislike, got)

	_, err = ParseReactionKind("love")
	assert.Error(t, err)
}

func TestStateForKind(t *testing.T) {
	assert.Equal(t, StateLiked, StateForKind(KindLike))
	assert.Equal(t, StateDisliked, StateForKind(KindDislike))
}

func TestReactionTargetRef(t *testing.T) {
	id := primitive.NewObjectID()

	video := &Reaction{Video: &id}
	typ, ref := video.TargetRef()
	assert.Equal(t, TargetVideo, typ)
	assert.Equal(t, id.Hex(), ref)

	comment := &Reaction{Comment: &id}
	typ, ref = comment.TargetRef()
	assert.Equal(t, TargetComment, typ)
	assert.Equal(t, id.Hex(), ref)

	tweet := &Reaction{Tweet: &id}
	typ, ref = tweet.TargetRef()
	assert.Equal(t, TargetTweet, typ)
	assert.Equal(t, id.Hex(), ref)

	empty := &Reaction{}
	typ, ref = empty.TargetRef()
	assert.Empty(t, typ)
	assert.Empty(t, ref)
}

func TestLikeNotificationType(t *testing.T) {
	assert.Equal(t, NotificationVideoLike, LikeNotificationType(TargetVideo))
	assert.Equal(t, NotificationCommentLike, LikeNotificationType(TargetComment))
	assert.Equal(t, NotificationTweetLike, LikeNotificationType(TargetTweet))
}
