package seed

import (
	"context"
	"fmt"
	"log/slog"

	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/repository"
	"socialfeed/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	MaxComments int
	MaxReplies  int
	LikeRatio   float64
	ImageRatio  float64
	SkipBcrypt  bool
	RandSeed    int64
}

// DefaultOptions is a small but lively feed.
func DefaultOptions() Options {
	return Options{
		NumUsers:    25,
		NumPosts:    80,
		MaxComments: 6,
		MaxReplies:  3,
		LikeRatio:   0.15,
		ImageRatio:  0.4,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Replies  int
	Likes    int
}

// Seeder writes demo data through the feed services so every stored counter
// matches the rows behind it.
type Seeder struct {
	db         *gorm.DB
	opts       Options
	factory    *Factory
	posts      *service.PostService
	comments   *service.CommentService
	engagement *service.EngagementService
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	factory, err := NewFactory(db, opts.RandSeed, opts.SkipBcrypt)
	if err != nil {
		return nil, err
	}

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)

	return &Seeder{
		db:         db,
		opts:       opts,
		factory:    factory,
		posts:      service.NewPostService(postRepo, engagementRepo, nil),
		comments:   service.NewCommentService(commentRepo, postRepo, engagementRepo),
		engagement: service.NewEngagementService(engagementRepo),
	}, nil
}

// ClearAll removes every feed row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	middleware.Logger.InfoContext(ctx, "clearing existing data")
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run seeds users, posts, comment threads and likes.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	var sum Summary
	middleware.Logger.InfoContext(ctx, "seeding started",
		slog.Int("users", s.opts.NumUsers),
		slog.Int("posts", s.opts.NumPosts),
	)

	users, err := s.seedUsers(s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return &sum, nil
	}

	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[s.factory.Intn(len(users))]
		post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			UserID:  author.ID,
			Content: s.factory.PostContent(),
			Images:  s.factory.PostImages(s.opts.ImageRatio),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		sum.Posts++

		if err := s.seedThread(ctx, post.ID, users, &sum); err != nil {
			return nil, err
		}
		if err := s.seedLikes(ctx, models.TargetRef{Type: models.TargetPost, ID: post.ID}, users, &sum); err != nil {
			return nil, err
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding completed",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("replies", sum.Replies),
		slog.Int("likes", sum.Likes),
	)
	return &sum, nil
}

func (s *Seeder) seedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser(i + 1)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedThread(ctx context.Context, postID uuid.UUID, users []*models.User, sum *Summary) error {
	for c := s.factory.Intn(s.opts.MaxComments + 1); c > 0; c-- {
		top, err := s.comments.CreateComment(ctx, service.CreateCommentInput{
			UserID:  users[s.factory.Intn(len(users))].ID,
			PostID:  postID,
			Content: s.factory.CommentContent(),
		})
		if err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		sum.Comments++
		if err := s.seedLikes(ctx, models.TargetRef{Type: models.TargetComment, ID: top.ID}, users, sum); err != nil {
			return err
		}

		for r := s.factory.Intn(s.opts.MaxReplies + 1); r > 0; r-- {
			parentID := top.ID
			reply, err := s.comments.CreateComment(ctx, service.CreateCommentInput{
				UserID:          users[s.factory.Intn(len(users))].ID,
				PostID:          postID,
				ParentCommentID: &parentID,
				Content:         s.factory.CommentContent(),
			})
			if err != nil {
				return fmt.Errorf("failed to create reply: %w", err)
			}
			sum.Replies++
			if err := s.seedLikes(ctx, models.TargetRef{Type: models.TargetComment, ID: reply.ID}, users, sum); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedLikes(ctx context.Context, target models.TargetRef, users []*models.User, sum *Summary) error {
	for _, u := range users {
		if !s.factory.Chance(s.opts.LikeRatio) {
			continue
		}
		state, err := s.engagement.Like(ctx, target, u.ID)
		if err != nil {
			return fmt.Errorf("failed to like %s: %w", target, err)
		}
		if state.Status.Changed() {
			sum.Likes++
		}
	}
	return nil
}
