package repository

import (
	"context"

	"socialfeed/internal/cache"
	"socialfeed/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleResult is the outcome of one like-set mutation.
type ToggleResult struct {
	Changed   bool
	LikeCount int
}

// EngagementRepository owns the like sets and the like_count caches of posts
// and comments.
type EngagementRepository interface {
	Like(ctx context.Context, target models.TargetRef, userID uint) (*ToggleResult, error)
	Unlike(ctx context.Context, target models.TargetRef, userID uint) (*ToggleResult, error)
	IsLiked(ctx context.Context, target models.TargetRef, userID uint) (bool, error)
	LikedTargetIDs(ctx context.Context, targetType models.TargetType, userID uint, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	LikeCount(ctx context.Context, target models.TargetRef) (int, error)
	Likers(ctx context.Context, target models.TargetRef) ([]models.User, error)
	LikedPosts(ctx context.Context, userID uint) ([]*models.Post, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new EngagementRepository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// Like adds userID to the target's like set. The insert and the counter bump
// share a transaction that holds the target row, and the counter only moves
// when the unique index accepted the row.
func (r *engagementRepository) Like(ctx context.Context, target models.TargetRef, userID uint) (*ToggleResult, error) {
	var res ToggleResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table := tableFor(target.Type)
		row, err := lockRow(tx, table, target.ID)
		if err != nil {
			return missing(err, target.Resource(), target.ID)
		}
		res.LikeCount = row.LikeCount

		like := models.Like{TargetType: target.Type, TargetID: target.ID, UserID: userID}
		inserted := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
		if inserted.Error != nil {
			return inserted.Error
		}
		if inserted.RowsAffected == 0 {
			return nil
		}

		if err := bump(tx, table, "like_count", target.ID, 1); err != nil {
			return err
		}
		res.Changed = true
		res.LikeCount++
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, target, res.Changed)
	return &res, nil
}

// Unlike removes userID from the target's like set, mirroring Like.
func (r *engagementRepository) Unlike(ctx context.Context, target models.TargetRef, userID uint) (*ToggleResult, error) {
	var res ToggleResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table := tableFor(target.Type)
		row, err := lockRow(tx, table, target.ID)
		if err != nil {
			return missing(err, target.Resource(), target.ID)
		}
		res.LikeCount = row.LikeCount

		removed := tx.Where("target_type = ? AND target_id = ? AND user_id = ?", target.Type, target.ID, userID).
			Delete(&models.Like{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			return nil
		}

		if err := bump(tx, table, "like_count", target.ID, -1); err != nil {
			return err
		}
		res.Changed = true
		res.LikeCount--
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, target, res.Changed)
	return &res, nil
}

func (r *engagementRepository) invalidate(ctx context.Context, target models.TargetRef, changed bool) {
	if changed && target.Type == models.TargetPost {
		cache.InvalidatePost(ctx, target.ID)
	}
}

func (r *engagementRepository) IsLiked(ctx context.Context, target models.TargetRef, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_type = ? AND target_id = ? AND user_id = ?", target.Type, target.ID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// LikedTargetIDs returns which of ids the user has liked.
func (r *engagementRepository) LikedTargetIDs(ctx context.Context, targetType models.TargetType, userID uint, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool)
	if userID == 0 || len(ids) == 0 {
		return liked, nil
	}
	var found []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("target_type = ? AND user_id = ? AND target_id IN ?", targetType, userID, ids).
		Pluck("target_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		liked[id] = true
	}
	return liked, nil
}

// LikeCount reads the stored counter of a target.
func (r *engagementRepository) LikeCount(ctx context.Context, target models.TargetRef) (int, error) {
	var counts []int
	err := r.db.WithContext(ctx).
		Table(tableFor(target.Type)).
		Where("id = ?", target.ID).
		Pluck("like_count", &counts).Error
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, &MissingError{Resource: target.Resource(), ID: target.ID}
	}
	return counts[0], nil
}

// Likers lists the users in a target's like set, earliest like first.
func (r *engagementRepository) Likers(ctx context.Context, target models.TargetRef) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*").
		Joins("JOIN likes ON likes.user_id = users.id").
		Where("likes.target_type = ? AND likes.target_id = ?", target.Type, target.ID).
		Order("likes.created_at ASC").
		Order("likes.id ASC").
		Find(&users).Error
	return users, err
}

// LikedPosts lists the posts a user liked, most recent like first.
func (r *engagementRepository) LikedPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*").
		Joins("JOIN likes ON likes.target_id = posts.id AND likes.target_type = ?", models.TargetPost).
		Where("likes.user_id = ?", userID).
		Order("likes.created_at DESC").
		Order("likes.id DESC").
		Preload("User").
		Find(&posts).Error
	return posts, err
}
