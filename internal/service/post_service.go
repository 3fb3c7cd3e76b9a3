package service

import (
	"context"
	"strings"
	"time"

	"socialfeed/internal/models"
	"socialfeed/internal/observability"
	"socialfeed/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const maxPostContentLen = 50000

type PostService struct {
	postRepo repository.PostRepository
	likes    repository.EngagementRepository
	images   *ImageProcessor
	now      func() time.Time
}

type CreatePostInput struct {
	UserID  uint
	Content string
	Images  []models.PostImage
}

// UpdatePostInput leaves content untouched when Content is blank and images
// untouched when Images is nil. A non-nil empty slice clears the images.
type UpdatePostInput struct {
	UserID  uint
	PostID  uuid.UUID
	Content string
	Images  []models.PostImage
}

type DeletePostInput struct {
	UserID uint
	PostID uuid.UUID
}

func NewPostService(
	postRepo repository.PostRepository,
	likes repository.EngagementRepository,
	images *ImageProcessor,
) *PostService {
	if images == nil {
		images = NewImageProcessor(nil)
	}
	return &PostService{
		postRepo: postRepo,
		likes:    likes,
		images:   images,
		now:      time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post := &models.Post{
		UserID:  in.UserID,
		Content: content,
		Images:  s.images.Process(ctx, in.Images),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, storageError(err)
	}

	view := models.NewPostView(post, false, s.now())
	return &view, nil
}

func (s *PostService) GetPost(ctx context.Context, id uuid.UUID, viewerID uint) (*models.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	liked, err := s.likes.IsLiked(ctx, post.Target(), viewerID)
	if err != nil {
		return nil, storageError(err)
	}
	view := models.NewPostView(post, liked, s.now())
	return &view, nil
}

// ListPosts returns every post, newest first.
func (s *PostService) ListPosts(ctx context.Context, viewerID uint) ([]models.PostView, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	liked, err := s.likes.LikedTargetIDs(ctx, models.TargetPost, viewerID, ids)
	if err != nil {
		return nil, storageError(err)
	}

	now := s.now()
	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.NewPostView(p, liked[p.ID], now))
	}
	return views, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, storageError(err)
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	if content := strings.TrimSpace(in.Content); content != "" {
		if len(content) > maxPostContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = content
	}
	if in.Images != nil {
		post.Images = s.images.Process(ctx, in.Images)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, storageError(err)
	}
	return s.GetPost(ctx, in.PostID, in.UserID)
}

// DeletePost removes the post with all its comments and every like on either.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (err error) {
	defer observability.TrackOperation("post", "DeletePost")()
	ctx, span := observability.GetTraceLayer().TraceService(ctx, "post", "DeletePost",
		attribute.String("post.id", in.PostID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return storageError(err)
	}
	if post.UserID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	res, err := s.postRepo.DeleteCascade(ctx, in.PostID)
	if err != nil {
		return storageError(err)
	}
	observability.CascadeDeletes.WithLabelValues("post", "comments").Add(float64(res.Comments))
	observability.CascadeDeletes.WithLabelValues("post", "likes").Add(float64(res.Likes))
	span.SetAttributes(
		attribute.Int64("comments.deleted", res.Comments),
		attribute.Int64("likes.deleted", res.Likes),
	)
	return nil
}
