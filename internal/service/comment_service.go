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

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	likes       repository.EngagementRepository
	now         func() time.Time
}

type CreateCommentInput struct {
	UserID          uint
	PostID          uuid.UUID
	ParentCommentID *uuid.UUID
	Content         string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uuid.UUID
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uuid.UUID
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	likes repository.EngagementRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		likes:       likes,
		now:         time.Now,
	}
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return content, nil
}

// CreateComment adds a top-level comment, or a reply when ParentCommentID is
// set. Replies may only target top-level comments of the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.CommentView, error) {
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, storageError(err)
	}

	if in.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, storageError(err)
		}
		if parent.PostID != in.PostID {
			return nil, models.NewNotFoundError("Comment", *in.ParentCommentID)
		}
		if parent.IsReply() {
			return nil, models.NewValidationError("Cannot reply to a reply")
		}
	}

	comment := &models.Comment{
		PostID:          in.PostID,
		UserID:          in.UserID,
		Content:         content,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, storageError(err)
	}

	view := models.NewCommentView(comment, false, s.now())
	return &view, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.CommentView, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, storageError(err)
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	content, err := validateCommentContent(in.Content)
	if err != nil {
		return nil, err
	}

	updated, err := s.commentRepo.UpdateContent(ctx, in.CommentID, content)
	if err != nil {
		return nil, storageError(err)
	}
	return s.view(ctx, updated, in.UserID)
}

// DeleteComment removes a comment. Deleting a top-level comment also removes
// its replies; the result counts every comment removed.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (result *models.DeleteResult, err error) {
	defer observability.TrackOperation("comment", "DeleteComment")()
	ctx, span := observability.GetTraceLayer().TraceService(ctx, "comment", "DeleteComment",
		attribute.String("comment.id", in.CommentID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, storageError(err)
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	deleted, err := s.commentRepo.DeleteCascade(ctx, in.CommentID)
	if err != nil {
		return nil, storageError(err)
	}
	observability.CascadeDeletes.WithLabelValues("comment", "comments").Add(float64(deleted))
	span.SetAttributes(attribute.Int("comments.deleted", deleted))

	return &models.DeleteResult{DeletedCount: deleted}, nil
}

// ListTopLevel lists a post's top-level comments, newest first.
func (s *CommentService) ListTopLevel(ctx context.Context, postID uuid.UUID, viewerID uint) ([]models.CommentView, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, storageError(err)
	}
	comments, err := s.commentRepo.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, storageError(err)
	}
	return s.views(ctx, comments, viewerID)
}

// ListReplies lists the replies of a comment, newest first, with a summary of
// the parent.
func (s *CommentService) ListReplies(ctx context.Context, commentID uuid.UUID, viewerID uint) (*models.RepliesView, error) {
	parent, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, storageError(err)
	}
	replies, err := s.commentRepo.ListReplies(ctx, commentID)
	if err != nil {
		return nil, storageError(err)
	}
	views, err := s.views(ctx, replies, viewerID)
	if err != nil {
		return nil, err
	}
	return &models.RepliesView{
		Parent:  models.NewParentSummary(parent, s.now()),
		Replies: views,
	}, nil
}

// ListComments lists the top level of a post, or the replies of parentID when
// given. The parent must belong to the post.
func (s *CommentService) ListComments(ctx context.Context, postID uuid.UUID, parentID *uuid.UUID, viewerID uint) ([]models.CommentView, error) {
	if parentID == nil {
		return s.ListTopLevel(ctx, postID, viewerID)
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, storageError(err)
	}
	parent, err := s.commentRepo.GetByID(ctx, *parentID)
	if err != nil {
		return nil, storageError(err)
	}
	if parent.PostID != postID {
		return nil, models.NewNotFoundError("Comment", *parentID)
	}
	replies, err := s.commentRepo.ListReplies(ctx, *parentID)
	if err != nil {
		return nil, storageError(err)
	}
	return s.views(ctx, replies, viewerID)
}

// GetDetail returns one comment, with its parent summary when it is a reply.
func (s *CommentService) GetDetail(ctx context.Context, commentID uuid.UUID, viewerID uint) (*models.CommentView, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, storageError(err)
	}
	view, err := s.view(ctx, comment, viewerID)
	if err != nil {
		return nil, err
	}
	if comment.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *comment.ParentCommentID)
		if err != nil {
			return nil, storageError(err)
		}
		view.Parent = models.NewParentSummary(parent, s.now())
	}
	return view, nil
}

// CountForPost counts the live comments of a post, replies included.
func (s *CommentService) CountForPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return 0, storageError(err)
	}
	count, err := s.commentRepo.CountByPost(ctx, postID)
	if err != nil {
		return 0, storageError(err)
	}
	return count, nil
}

func (s *CommentService) view(ctx context.Context, comment *models.Comment, viewerID uint) (*models.CommentView, error) {
	liked, err := s.likes.IsLiked(ctx, comment.Target(), viewerID)
	if err != nil {
		return nil, storageError(err)
	}
	view := models.NewCommentView(comment, liked, s.now())
	return &view, nil
}

func (s *CommentService) views(ctx context.Context, comments []*models.Comment, viewerID uint) ([]models.CommentView, error) {
	ids := make([]uuid.UUID, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	liked, err := s.likes.LikedTargetIDs(ctx, models.TargetComment, viewerID, ids)
	if err != nil {
		return nil, storageError(err)
	}

	now := s.now()
	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.NewCommentView(c, liked[c.ID], now))
	}
	return views, nil
}
