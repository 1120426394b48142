package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanvir09/vidtube/backend/internal/models"
	"github.com/tanvir09/vidtube/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeReactionRepo is an in-memory ReactionRepository enforcing the same
// one-reaction-per-(user,target) invariant as the Mongo unique indexes
type fakeReactionRepo struct {
	mu         sync.Mutex
	rows       map[string]*models.Reaction
	insertErr  error // one-shot scripted insert failure
	hideOnFind int   // next N Find calls pretend the row is absent
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{rows: make(map[string]*models.Reaction)}
}

func rowKey(userID uint, targetType models.TargetType, targetID string) string {
	return fmt.Sprintf("%d|%s|%s", userID, targetType, targetID)
}

func (f *fakeReactionRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (f *fakeReactionRepo) Find(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (*models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideOnFind > 0 {
		f.hideOnFind--
		return nil, nil
	}
	if r, ok := f.rows[rowKey(userID, targetType, targetID)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeReactionRepo) Insert(ctx context.Context, userID uint, targetType models.TargetType, targetID string, kind models.ReactionKind) (*models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		err := f.insertErr
		f.insertErr = nil
		return nil, err
	}
	key := rowKey(userID, targetType, targetID)
	if _, ok := f.rows[key]; ok {
		return nil, repositories.ErrDuplicateReaction
	}
	objID := primitive.NewObjectID()
	r := &models.Reaction{
		ID:        primitive.NewObjectID(),
		LikedBy:   userID,
		Type:      kind,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	switch targetType {
	case models.TargetComment:
		r.Comment = &objID
	case models.TargetTweet:
		r.Tweet = &objID
	default:
		r.Video = &objID
	}
	f.rows[key] = r
	return r, nil
}

func (f *fakeReactionRepo) UpdateKind(ctx context.Context, userID uint, targetType models.TargetType, targetID string, kind models.ReactionKind) (*models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[rowKey(userID, targetType, targetID)]
	if !ok {
		return nil, fmt.Errorf("reaction not found")
	}
	r.Type = kind
	r.UpdatedAt = time.Now()
	copied := *r
	return &copied, nil
}

func (f *fakeReactionRepo) Remove(ctx context.Context, userID uint, targetType models.TargetType, targetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := rowKey(userID, targetType, targetID)
	if _, ok := f.rows[key]; !ok {
		return false, nil
	}
	delete(f.rows, key)
	return true, nil
}

func (f *fakeReactionRepo) CountByKind(ctx context.Context, targetType models.TargetType, targetID string, kind models.ReactionKind) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	suffix := fmt.Sprintf("|%s|%s", targetType, targetID)
	for key, r := range f.rows {
		if r.Type == kind && len(key) >= len(suffix) && key[len(key)-len(suffix):] == suffix {
			count++
		}
	}
	return count, nil
}

func (f *fakeReactionRepo) GetLikedVideos(ctx context.Context, userID uint) ([]models.Reaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reaction
	for _, r := range f.rows {
		if r.LikedBy == userID && r.Type == models.KindLike && r.Video != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReactionRepo) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeTargetRepo answers existence/owner lookups for one entity type
type fakeTargetRepo struct {
	owners map[string]uint
}

func (f *fakeTargetRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.owners[id]
	return ok, nil
}

func (f *fakeTargetRepo) OwnerOf(ctx context.Context, id string) (uint, error) {
	owner, ok := f.owners[id]
	if !ok {
		return 0, fmt.Errorf("target not found")
	}
	return owner, nil
}

// fakeUserRepo serves display names
type fakeUserRepo struct {
	names map[uint]string
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) error { return nil }
func (f *fakeUserRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if name, ok := f.names[id]; ok {
		return &models.User{ID: id, DisplayName: name}, nil
	}
	return nil, fmt.Errorf("user not found")
}
func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, fmt.Errorf("user not found")
}
func (f *fakeUserRepo) GetUserByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return nil, fmt.Errorf("user not found")
}
func (f *fakeUserRepo) DisplayName(ctx context.Context, id uint) (string, error) {
	if name, ok := f.names[id]; ok {
		return name, nil
	}
	return "", fmt.Errorf("user not found")
}

// fakeNotificationRepo stores notifications in memory
type fakeNotificationRepo struct {
	mu        sync.Mutex
	stored    []*models.Notification
	createErr error
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.stored = append(f.stored, n)
	return nil
}

func (f *fakeNotificationRepo) DeleteForReaction(ctx context.Context, sender uint, targetType models.TargetType, targetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.stored[:0]
	for _, n := range f.stored {
		if n.Sender == sender && n.Type == models.LikeNotificationType(targetType) {
			continue
		}
		kept = append(kept, n)
	}
	f.stored = kept
	return nil
}

func (f *fakeNotificationRepo) GetByRecipient(ctx context.Context, recipient uint, page, limit int64) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (f *fakeNotificationRepo) GetUnreadCount(ctx context.Context, recipient uint) (int64, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) MarkAsRead(ctx context.Context, id string, recipient uint) error {
	return nil
}
func (f *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, recipient uint) error { return nil }

func (f *fakeNotificationRepo) all() []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Notification, len(f.stored))
	copy(out, f.stored)
	return out
}

// fakeBroadcaster records published events
type fakeBroadcaster struct {
	mu            sync.Mutex
	counts        []models.AggregateCount
	notifications []*models.Notification
	publishErr    error
}

func (f *fakeBroadcaster) PublishCounts(ctx context.Context, targetType models.TargetType, targetID string, likeCount, dislikeCount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.counts = append(f.counts, models.AggregateCount{
		TargetType:   targetType,
		TargetID:     targetID,
		LikeCount:    likeCount,
		DislikeCount: dislikeCount,
	})
	return nil
}

func (f *fakeBroadcaster) PublishNotification(ctx context.Context, recipient uint, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.notifications = append(f.notifications, n)
	return nil
}

type engineFixture struct {
	service   ReactionService
	reactions *fakeReactionRepo
	notifs    *fakeNotificationRepo
	broadcast *fakeBroadcaster
}

func newEngineFixture(owners map[string]uint, names map[uint]string) *engineFixture {
	reactions := newFakeReactionRepo()
	notifs := &fakeNotificationRepo{}
	broadcast := &fakeBroadcaster{}
	targets := &repositories.TargetDirectory{
		Videos:   &fakeTargetRepo{owners: owners},
		Comments: &fakeTargetRepo{owners: owners},
		Tweets:   &fakeTargetRepo{owners: owners},
	}
	users := &fakeUserRepo{names: names}
	logger := zap.NewNop()
	dispatcher := NewNotificationDispatcher(notifs, targets, users, broadcast, logger)
	service := NewReactionService(reactions, targets, dispatcher, broadcast, logger)
	return &engineFixture{service: service, reactions: reactions, notifs: notifs, broadcast: broadcast}
}

const videoID = "65f1a2b3c4d5e6f7a8b9c0d1"

func TestReactFullLifecycle(t *testing.T) {
	ctx := context.Background()
	// actor 1 reacts to a video owned by user 2
	fx := newEngineFixture(map[string]uint{videoID: 2}, map[uint]string{1: "Alice", 2: "Bob"})

	// None --like--> Liked: row created, notification to the owner
	res, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.StateLiked, res.State)
	assert.Equal(t, "added", res.Message)
	assert.Equal(t, int64(1), res.LikeCount)
	assert.Equal(t, int64(0), res.DislikeCount)

	notifs := fx.notifs.all()
	require.Len(t, notifs, 1)
	assert.Equal(t, uint(2), notifs[0].Recipient)
	assert.Equal(t, uint(1), notifs[0].Sender)
	assert.Equal(t, models.NotificationVideoLike, notifs[0].Type)
	assert.Equal(t, "Alice liked your video", notifs[0].Message)

	// Liked --like--> None: toggle-off removes row and notification
	res, err = fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.StateNone, res.State)
	assert.Equal(t, "removed", res.Message)
	assert.Equal(t, int64(0), res.LikeCount)
	assert.Empty(t, fx.notifs.all())
	assert.Equal(t, 0, fx.reactions.rowCount())

	// None --dislike--> Disliked: dislikes are silent
	res, err = fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindDislike)
	require.NoError(t, err)
	assert.Equal(t, models.StateDisliked, res.State)
	assert.Equal(t, "added", res.Message)
	assert.Equal(t, int64(1), res.DislikeCount)
	assert.Empty(t, fx.notifs.all())

	// Disliked --like--> Liked: switch in place, new positive signal notifies
	res, err = fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.StateLiked, res.State)
	assert.Equal(t, "updated", res.Message)
	assert.Equal(t, int64(1), res.LikeCount)
	assert.Equal(t, int64(0), res.DislikeCount)
	assert.Len(t, fx.notifs.all(), 1)
	assert.Equal(t, 1, fx.reactions.rowCount())
}

func TestReactSwitchKeepsSingleRowAndStaysSilent(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{videoID: 2}, map[uint]string{1: "Alice"})

	_, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	require.Len(t, fx.notifs.all(), 1)

	// Liked --dislike--> Disliked: no new notification for switching away
	res, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindDislike)
	require.NoError(t, err)
	assert.Equal(t, models.StateDisliked, res.State)
	assert.Equal(t, "updated", res.Message)
	assert.Equal(t, 1, fx.reactions.rowCount())
	assert.Len(t, fx.notifs.all(), 1)
}

func TestReactToggleOffRoundTrip(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{videoID: 2}, map[uint]string{1: "Alice"})

	states := []models.ReactionState{models.StateDisliked, models.StateNone, models.StateDisliked}
	for i, want := range states {
		res, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindDislike)
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, want, res.State, "call %d", i)
	}
}

func TestReactSelfLikeCreatesNoNotification(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{videoID: 1}, map[uint]string{1: "Alice"})

	res, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.StateLiked, res.State)
	assert.Equal(t, int64(1), res.LikeCount)
	assert.Empty(t, fx.notifs.all())
}

func TestReactTargetNotFound(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{}, nil)

	_, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	assert.Equal(t, 0, fx.reactions.rowCount())
	assert.Empty(t, fx.broadcast.counts)
}

func TestReactInvalidKindAndTargetType(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{videoID: 2}, nil)

	_, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.ReactionKind("love"))
	assert.ErrorIs(t, err, ErrInvalidKind)

	_, err = fx.service.React(ctx, 1, models.TargetType("playlist"), videoID, models.KindLike)
	assert.ErrorIs(t, err, ErrInvalidTargetType)
}

func TestReactDuplicateInsertRaceResolvesAgainstSurvivingRow(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{videoID: 2}, map[uint]string{1: "Alice"})

	// A concurrent request won the first-reaction race after our Find saw
	// nothing: seed the surviving row, hide it from the first Find, and make
	// our insert hit the unique index.
	_, err := fx.reactions.Insert(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	fx.reactions.hideOnFind = 1
	fx.reactions.insertErr = repositories.ErrDuplicateReaction

	// Our like now observes the winner's row and toggles it off.
	res, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.StateNone, res.State)
	assert.Equal(t, "removed", res.Message)
	assert.Equal(t, 0, fx.reactions.rowCount())
}

func TestReactBroadcastFailureDoesNotFailReaction(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{videoID: 2}, map[uint]string{1: "Alice"})
	fx.broadcast.publishErr = errors.New("redis down")

	res, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.StateLiked, res.State)
	assert.Equal(t, int64(1), res.LikeCount)
	assert.Equal(t, 1, fx.reactions.rowCount())
}

func TestReactNotificationFailureDoesNotFailReaction(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{videoID: 2}, map[uint]string{1: "Alice"})
	fx.notifs.createErr = errors.New("mongo down")

	res, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	assert.Equal(t, models.StateLiked, res.State)
	assert.Empty(t, fx.notifs.all())
}

func TestReactPublishesCountsInCommitOrder(t *testing.T) {
	ctx := context.Background()
	fx := newEngineFixture(map[string]uint{videoID: 2}, map[uint]string{1: "Alice"})

	_, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	_, err = fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindDislike)
	require.NoError(t, err)

	require.Len(t, fx.broadcast.counts, 2)
	assert.Equal(t, int64(1), fx.broadcast.counts[0].LikeCount)
	assert.Equal(t, int64(0), fx.broadcast.counts[0].DislikeCount)
	assert.Equal(t, int64(0), fx.broadcast.counts[1].LikeCount)
	assert.Equal(t, int64(1), fx.broadcast.counts[1].DislikeCount)
}

func TestCountsNeverDriftFromRows(t *testing.T) {
	ctx := context.Background()
	owners := map[string]uint{videoID: 9}
	names := map[uint]string{}
	for i := uint(1); i <= 5; i++ {
		names[i] = fmt.Sprintf("user%d", i)
	}
	fx := newEngineFixture(owners, names)

	kinds := []models.ReactionKind{
		models.KindLike, models.KindDislike, models.KindLike,
		models.KindDislike, models.KindLike,
	}
	for i := uint(1); i <= 5; i++ {
		_, err := fx.service.React(ctx, i, models.TargetVideo, videoID, kinds[i-1])
		require.NoError(t, err)
	}
	// user 1 toggles off, user 2 switches to like
	_, err := fx.service.React(ctx, 1, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	_, err = fx.service.React(ctx, 2, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)

	counts, err := fx.service.Counts(ctx, models.TargetVideo, videoID)
	require.NoError(t, err)

	likes, err := fx.reactions.CountByKind(ctx, models.TargetVideo, videoID, models.KindLike)
	require.NoError(t, err)
	dislikes, err := fx.reactions.CountByKind(ctx, models.TargetVideo, videoID, models.KindDislike)
	require.NoError(t, err)
	assert.Equal(t, likes, counts.LikeCount)
	assert.Equal(t, dislikes, counts.DislikeCount)
	assert.Equal(t, int64(3), counts.LikeCount)
	assert.Equal(t, int64(1), counts.DislikeCount)
}
