package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tanvir09/vidtube/backend/internal/models"
	"github.com/tanvir09/vidtube/backend/internal/realtime"
	"github.com/tanvir09/vidtube/backend/internal/repositories"
	"go.uber.org/zap"
)

var (
	// ErrInvalidKind is returned when the requested kind is not like/dislike
	ErrInvalidKind = errors.New("kind must be either like or dislike")
	// ErrInvalidTargetType is returned for target types the engine does not know
	ErrInvalidTargetType = errors.New("unknown target type")
	// ErrTargetNotFound is returned when the reacted-to entity does not exist
	ErrTargetNotFound = errors.New("target not found")
	// ErrReactionConflict is returned when a first-reaction race could not be
	// resolved even after re-reading the store
	ErrReactionConflict = errors.New("could not resolve concurrent reaction")
)

// Toggle transition messages surfaced to the caller
const (
	messageAdded   = "added"
	messageUpdated = "updated"
	messageRemoved = "removed"
)

// ReactionService is the single state machine governing "react with kind K to
// target T". Per (user, target) the states are none/liked/disliked; repeating
// the stored kind toggles the reaction off, the opposite kind switches it in
// place.
type ReactionService interface {
	React(ctx context.Context, userID uint, targetType models.TargetType, targetID string, kind models.ReactionKind) (*models.ReactResponse, error)
	Counts(ctx context.Context, targetType models.TargetType, targetID string) (*models.AggregateCount, error)
	LikedVideos(ctx context.Context, userID uint) ([]models.Reaction, error)
}

type reactionService struct {
	reactions   repositories.ReactionRepository
	targets     *repositories.TargetDirectory
	dispatcher  *NotificationDispatcher
	broadcaster realtime.Broadcaster
	logger      *zap.Logger
}

// NewReactionService creates a new ReactionService
func NewReactionService(
	reactionRepo repositories.ReactionRepository,
	targets *repositories.TargetDirectory,
	dispatcher *NotificationDispatcher,
	broadcaster realtime.Broadcaster,
	logger *zap.Logger,
) ReactionService {
	return &reactionService{
		reactions:   reactionRepo,
		targets:     targets,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// React applies one toggle transition. The store mutation is the unit of
// correctness: if it fails nothing else happens, and once it succeeds the
// notification and broadcast are best-effort.
func (s *reactionService) React(ctx context.Context, userID uint, targetType models.TargetType, targetID string, kind models.ReactionKind) (*models.ReactResponse, error) {
	if kind != models.KindLike && kind != models.KindDislike {
		return nil, ErrInvalidKind
	}

	targetRepo, ok := s.targets.ForType(targetType)
	if !ok {
		return nil, ErrInvalidTargetType
	}
	exists, err := targetRepo.Exists(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("target existence check failed: %w", err)
	}
	if !exists {
		return nil, ErrTargetNotFound
	}

	existing, err := s.reactions.Find(ctx, userID, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("reaction lookup failed: %w", err)
	}

	inserted := false
	if existing == nil {
		_, insertErr := s.reactions.Insert(ctx, userID, targetType, targetID, kind)
		switch {
		case insertErr == nil:
			inserted = true
		case errors.Is(insertErr, repositories.ErrDuplicateReaction):
			// Lost a first-reaction race; the surviving row decides the
			// transition, so re-read and take the existing-row path.
			existing, err = s.reactions.Find(ctx, userID, targetType, targetID)
			if err != nil {
				return nil, fmt.Errorf("reaction re-read failed: %w", err)
			}
			if existing == nil {
				return nil, ErrReactionConflict
			}
		default:
			return nil, fmt.Errorf("reaction insert failed: %w", insertErr)
		}
	}

	var (
		state   models.ReactionState
		message string
		notify  bool
		retract bool
	)
	switch {
	case inserted:
		state = models.StateForKind(kind)
		message = messageAdded
		notify = kind == models.KindLike
	case existing.Type == kind:
		if _, err := s.reactions.Remove(ctx, userID, targetType, targetID); err != nil {
			return nil, fmt.Errorf("reaction remove failed: %w", err)
		}
		state = models.StateNone
		message = messageRemoved
		retract = existing.Type == models.KindLike
	default:
		if _, err := s.reactions.UpdateKind(ctx, userID, targetType, targetID, kind); err != nil {
			return nil, fmt.Errorf("reaction update failed: %w", err)
		}
		state = models.StateForKind(kind)
		message = messageUpdated
		// A switch into like is a new positive signal; a switch away stays silent.
		notify = kind == models.KindLike
	}

	counts, err := s.Counts(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}

	if notify {
		s.dispatcher.NotifyLike(ctx, userID, targetType, targetID)
	}
	if retract {
		s.dispatcher.Retract(ctx, userID, targetType, targetID)
	}

	if err := s.broadcaster.PublishCounts(ctx, targetType, targetID, counts.LikeCount, counts.DislikeCount); err != nil {
		s.logger.Warn("failed to broadcast reaction counts",
			zap.String("target_type", string(targetType)),
			zap.String("target_id", targetID),
			zap.Error(err))
	}

	return &models.ReactResponse{
		State:        state,
		LikeCount:    counts.LikeCount,
		DislikeCount: counts.DislikeCount,
		Message:      message,
	}, nil
}

// Counts computes live like/dislike totals straight from the reaction store.
// There is no cached counter to go stale.
func (s *reactionService) Counts(ctx context.Context, targetType models.TargetType, targetID string) (*models.AggregateCount, error) {
	likes, err := s.reactions.CountByKind(ctx, targetType, targetID, models.KindLike)
	if err != nil {
		return nil, fmt.Errorf("like count failed: %w", err)
	}
	dislikes, err := s.reactions.CountByKind(ctx, targetType, targetID, models.KindDislike)
	if err != nil {
		return nil, fmt.Errorf("dislike count failed: %w", err)
	}
	return &models.AggregateCount{
		TargetType:   targetType,
		TargetID:     targetID,
		LikeCount:    likes,
		DislikeCount: dislikes,
	}, nil
}

// LikedVideos lists the videos the user currently likes, newest like first
func (s *reactionService) LikedVideos(ctx context.Context, userID uint) ([]models.Reaction, error) {
	return s.reactions.GetLikedVideos(ctx, userID)
}
