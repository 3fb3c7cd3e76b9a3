package repository

import (
	"context"

	"socialfeed/internal/cache"
	"socialfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	DeleteCascade(ctx context.Context, id uuid.UUID) (*PostDeleteResult, error)
}

// PostDeleteResult counts what a post cascade removed.
type PostDeleteResult struct {
	Comments int64
	Likes    int64
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.LikeCount = 0
	post.CommentCount = 0
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("User").First(post, "id = ?", post.ID).Error
}

// GetByID serves the post row through the cache. Viewer state is never part of
// the cached value.
func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).Preload("User").First(&post, "id = ?", id).Error
	})
	if err != nil {
		return nil, missing(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := newestFirst(r.db.WithContext(ctx), "posts").
		Preload("User").
		Find(&posts).Error
	return posts, err
}

// Update persists content and images only; counters are owned by the
// engagement and comment transactions.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	result := r.db.WithContext(ctx).
		Model(post).
		Select("content", "images", "updated_at").
		Updates(post)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &MissingError{Resource: "Post", ID: post.ID}
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// DeleteCascade removes the post, its comments and every like on either, in
// one transaction.
func (r *postRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (*PostDeleteResult, error) {
	var res PostDeleteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockRow(tx, "posts", id); err != nil {
			return missing(err, "Post", id)
		}

		var commentIDs []uuid.UUID
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		likes := tx.Where("target_type = ? AND target_id = ?", models.TargetPost, id)
		if len(commentIDs) > 0 {
			likes = likes.Or("target_type = ? AND target_id IN ?", models.TargetComment, commentIDs)
		}
		deleted := likes.Delete(&models.Like{})
		if deleted.Error != nil {
			return deleted.Error
		}
		res.Likes = deleted.RowsAffected

		deleted = tx.Where("post_id = ?", id).Delete(&models.Comment{})
		if deleted.Error != nil {
			return deleted.Error
		}
		res.Comments = deleted.RowsAffected

		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidatePost(ctx, id)
	return &res, nil
}
