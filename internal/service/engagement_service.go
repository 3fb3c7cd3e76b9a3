package service

import (
	"context"
	"time"

	"socialfeed/internal/models"
	"socialfeed/internal/observability"
	"socialfeed/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type EngagementService struct {
	likes repository.EngagementRepository
	now   func() time.Time
}

func NewEngagementService(likes repository.EngagementRepository) *EngagementService {
	return &EngagementService{likes: likes, now: time.Now}
}

type toggleFunc func(context.Context, models.TargetRef, uint) (*repository.ToggleResult, error)

// Like adds userID to the target's like set. Liking twice is not an error; the
// second call reports already_liked with the count unchanged.
func (s *EngagementService) Like(ctx context.Context, target models.TargetRef, userID uint) (*models.LikeState, error) {
	return s.toggle(ctx, "Like", target, userID, s.likes.Like, models.OutcomeLiked, models.OutcomeAlreadyLiked, true)
}

// Unlike removes userID from the target's like set, reporting not_liked when
// the user was not a member.
func (s *EngagementService) Unlike(ctx context.Context, target models.TargetRef, userID uint) (*models.LikeState, error) {
	return s.toggle(ctx, "Unlike", target, userID, s.likes.Unlike, models.OutcomeUnliked, models.OutcomeNotLiked, false)
}

func (s *EngagementService) toggle(
	ctx context.Context,
	method string,
	target models.TargetRef,
	userID uint,
	apply toggleFunc,
	changed, unchanged models.LikeOutcome,
	isLiked bool,
) (state *models.LikeState, err error) {
	defer observability.TrackOperation("engagement", method)()
	ctx, span := observability.GetTraceLayer().TraceService(ctx, "engagement", method,
		attribute.String("target.type", string(target.Type)),
		attribute.String("target.id", target.ID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	res, err := apply(ctx, target, userID)
	if err != nil {
		return nil, storageError(err)
	}

	outcome := unchanged
	if res.Changed {
		outcome = changed
	}
	observability.EngagementToggles.WithLabelValues(string(target.Type), string(outcome)).Inc()

	return &models.LikeState{Status: outcome, LikeCount: res.LikeCount, IsLiked: isLiked}, nil
}

// IsLikedBy is false for anonymous viewers.
func (s *EngagementService) IsLikedBy(ctx context.Context, target models.TargetRef, viewerID uint) (bool, error) {
	liked, err := s.likes.IsLiked(ctx, target, viewerID)
	if err != nil {
		return false, storageError(err)
	}
	return liked, nil
}

// State reports the stored count and the viewer's membership of a target.
func (s *EngagementService) State(ctx context.Context, target models.TargetRef, viewerID uint) (*models.LikeState, error) {
	count, err := s.likes.LikeCount(ctx, target)
	if err != nil {
		return nil, storageError(err)
	}
	liked, err := s.IsLikedBy(ctx, target, viewerID)
	if err != nil {
		return nil, err
	}
	return &models.LikeState{LikeCount: count, IsLiked: liked}, nil
}

// Likers returns the public identity of every member of the like set.
func (s *EngagementService) Likers(ctx context.Context, target models.TargetRef) ([]models.UserSummary, error) {
	users, err := s.likes.Likers(ctx, target)
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

// CommentLikers answers the check-like query for a comment.
func (s *EngagementService) CommentLikers(ctx context.Context, commentID uuid.UUID, viewerID uint) (*models.CommentLikers, error) {
	target := models.TargetRef{Type: models.TargetComment, ID: commentID}
	state, err := s.State(ctx, target, viewerID)
	if err != nil {
		return nil, err
	}
	likers, err := s.Likers(ctx, target)
	if err != nil {
		return nil, err
	}
	return &models.CommentLikers{IsLiked: state.IsLiked, Likes: state.LikeCount, LikedBy: likers}, nil
}

// LikedPosts lists the posts userID liked, most recent like first.
func (s *EngagementService) LikedPosts(ctx context.Context, userID uint) ([]models.PostView, error) {
	posts, err := s.likes.LikedPosts(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	now := s.now()
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.NewPostView(p, true, now))
	}
	return views, nil
}
