package repository

import (
	"context"

	"socialfeed/internal/cache"
	"socialfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID uuid.UUID) (int64, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) (int, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and bumps the parent's reply_count and the post's
// comment_count in the same transaction.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.LikeCount = 0
	comment.ReplyCount = 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockRow(tx, "posts", comment.PostID); err != nil {
			return missing(err, "Post", comment.PostID)
		}
		if comment.ParentCommentID != nil {
			parent, err := lockRow(tx, "comments", *comment.ParentCommentID)
			if err != nil {
				return missing(err, "Comment", *comment.ParentCommentID)
			}
			if parent.PostID != comment.PostID {
				return &MissingError{Resource: "Comment", ID: *comment.ParentCommentID}
			}
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if comment.ParentCommentID != nil {
			if err := bump(tx, "comments", "reply_count", *comment.ParentCommentID, 1); err != nil {
				return err
			}
		}
		return bump(tx, "posts", "comment_count", comment.PostID, 1)
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, comment.PostID)
	return r.db.WithContext(ctx).Preload("User").First(comment, "id = ?", comment.ID).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", id).Error; err != nil {
		return nil, missing(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := newestFirst(r.db.WithContext(ctx), "comments").
		Preload("User").
		Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uuid.UUID) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := newestFirst(r.db.WithContext(ctx), "comments").
		Preload("User").
		Where("parent_comment_id = ?", parentID).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Comment{ID: id}).
		Update("content", content)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, &MissingError{Resource: "Comment", ID: id}
	}
	return r.GetByID(ctx, id)
}

// DeleteCascade removes a comment. A top-level comment takes its replies and
// every like on them along; a reply releases one slot of its parent's
// reply_count. The post's comment_count drops by the number of comments
// removed, which is also the return value.
func (r *commentRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (int, error) {
	var (
		deleted int
		postID  uuid.UUID
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockRow(tx, "comments", id)
		if err != nil {
			return missing(err, "Comment", id)
		}
		postID = row.PostID

		doomed := []uuid.UUID{id}
		if row.ParentCommentID == nil {
			var replyIDs []uuid.UUID
			if err := tx.Model(&models.Comment{}).
				Where("parent_comment_id = ?", id).
				Pluck("id", &replyIDs).Error; err != nil {
				return err
			}
			doomed = append(doomed, replyIDs...)
		}

		if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetComment, doomed).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", doomed).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		deleted = int(result.RowsAffected)

		if row.ParentCommentID != nil {
			if err := bump(tx, "comments", "reply_count", *row.ParentCommentID, -1); err != nil {
				return err
			}
		}
		return bump(tx, "posts", "comment_count", postID, -deleted)
	})
	if err != nil {
		return 0, err
	}

	cache.InvalidatePost(ctx, postID)
	return deleted, nil
}
