package service

import (
	"context"
	"fmt"
	"testing"

	"socialfeed/internal/database"
	"socialfeed/internal/models"
	"socialfeed/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixture struct {
	db         *gorm.DB
	posts      *PostService
	comments   *CommentService
	engagement *EngagementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likes := repository.NewEngagementRepository(db)

	return &fixture{
		db:         db,
		posts:      NewPostService(postRepo, likes, nil),
		comments:   NewCommentService(commentRepo, postRepo, likes),
		engagement: NewEngagementService(likes),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: fmt.Sprintf("%s@example.com", name), Password: "x"}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) post(t *testing.T, author *models.User) *models.PostView {
	t.Helper()
	p, err := f.posts.CreatePost(context.Background(), CreatePostInput{UserID: author.ID, Content: "post by " + author.Username})
	require.NoError(t, err)
	return p
}

func (f *fixture) comment(t *testing.T, post *models.PostView, author *models.User, parent *models.CommentView) *models.CommentView {
	t.Helper()
	in := CreateCommentInput{UserID: author.ID, PostID: post.ID, Content: "comment by " + author.Username}
	if parent != nil {
		in.ParentCommentID = &parent.ID
	}
	c, err := f.comments.CreateComment(context.Background(), in)
	require.NoError(t, err)
	return c
}

func (f *fixture) postRow(t *testing.T, id any) models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, f.db.First(&p, "id = ?", id).Error)
	return p
}

func (f *fixture) commentRow(t *testing.T, id any) models.Comment {
	t.Helper()
	var c models.Comment
	require.NoError(t, f.db.First(&c, "id = ?", id).Error)
	return c
}

func (f *fixture) likeRows(t *testing.T, target models.TargetRef) int {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Count(&n).Error)
	return int(n)
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, code, appErr.Code)
	}
}

func postTarget(v *models.PostView) models.TargetRef {
	return models.TargetRef{Type: models.TargetPost, ID: v.ID}
}

func commentTarget(v *models.CommentView) models.TargetRef {
	return models.TargetRef{Type: models.TargetComment, ID: v.ID}
}
