package repository

import (
	"context"
	"fmt"
	"testing"

	"socialfeed/internal/database"
	"socialfeed/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: fmt.Sprintf("%s@example.com", name), Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createPost(t *testing.T, db *gorm.DB, author *models.User, content string) *models.Post {
	t.Helper()
	p := &models.Post{UserID: author.ID, Content: content}
	require.NoError(t, NewPostRepository(db).Create(context.Background(), p))
	return p
}

func createComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, parent *models.Comment) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: post.ID, UserID: author.ID, Content: "comment by " + author.Username}
	if parent != nil {
		c.ParentCommentID = &parent.ID
	}
	require.NoError(t, NewCommentRepository(db).Create(context.Background(), c))
	return c
}

func reloadPost(t *testing.T, db *gorm.DB, id any) models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return p
}

func reloadComment(t *testing.T, db *gorm.DB, id any) models.Comment {
	t.Helper()
	var c models.Comment
	require.NoError(t, db.First(&c, "id = ?", id).Error)
	return c
}

func countLikes(t *testing.T, db *gorm.DB, target models.TargetRef) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Like{}).
		Where("target_type = ? AND target_id = ?", target.Type, target.ID).
		Count(&n).Error)
	return n
}
