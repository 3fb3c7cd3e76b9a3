package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"socialfeed/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_CreateMaintainsCounters(t *testing.T) {
	db := setupSQLite(t)
	author := createUser(t, db, "writer")
	reader := createUser(t, db, "reader")
	post := createPost(t, db, author, "thread")

	top := createComment(t, db, post, reader, nil)
	assert.Equal(t, "reader", top.User.Username)
	assert.False(t, top.IsReply())

	createComment(t, db, post, author, top)
	createComment(t, db, post, reader, top)

	assert.Equal(t, 3, reloadPost(t, db, post.ID).CommentCount)
	assert.Equal(t, 2, reloadComment(t, db, top.ID).ReplyCount)

	count, err := NewCommentRepository(db).CountByPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestCommentRepository_CreateRejectsUnknownTargets(t *testing.T) {
	db := setupSQLite(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "writer")
	post := createPost(t, db, author, "one")
	otherPost := createPost(t, db, author, "two")
	foreign := createComment(t, db, otherPost, author, nil)

	tests := []struct {
		name     string
		comment  *models.Comment
		resource string
	}{
		{
			name:     "missing post",
			comment:  &models.Comment{PostID: uuid.New(), UserID: author.ID, Content: "hi"},
			resource: "Post",
		},
		{
			name:     "missing parent",
			comment:  &models.Comment{PostID: post.ID, UserID: author.ID, Content: "hi", ParentCommentID: ptr(uuid.New())},
			resource: "Comment",
		},
		{
			name:     "parent on another post",
			comment:  &models.Comment{PostID: post.ID, UserID: author.ID, Content: "hi", ParentCommentID: &foreign.ID},
			resource: "Comment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.comment)
			var missingErr *MissingError
			require.ErrorAs(t, err, &missingErr)
			assert.Equal(t, tt.resource, missingErr.Resource)
		})
	}

	assert.Equal(t, 0, reloadPost(t, db, post.ID).CommentCount)
	assert.Equal(t, 0, reloadComment(t, db, foreign.ID).ReplyCount)
}

func TestCommentRepository_ListsNewestFirst(t *testing.T) {
	db := setupSQLite(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "writer")
	post := createPost(t, db, author, "thread")

	older := createComment(t, db, post, author, nil)
	newer := createComment(t, db, post, author, nil)
	r1 := createComment(t, db, post, author, older)
	r2 := createComment(t, db, post, author, older)

	top, err := repo.ListTopLevel(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, newer.ID, top[0].ID)
	assert.Equal(t, older.ID, top[1].ID)

	replies, err := repo.ListReplies(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, r2.ID, replies[0].ID)
	assert.Equal(t, r1.ID, replies[1].ID)
	assert.Equal(t, "writer", replies[0].User.Username)
}

func TestCommentRepository_UpdateContent(t *testing.T) {
	db := setupSQLite(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "writer")
	post := createPost(t, db, author, "thread")
	c := createComment(t, db, post, author, nil)

	updated, err := repo.UpdateContent(ctx, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, "writer", updated.User.Username)

	_, err = repo.UpdateContent(ctx, uuid.New(), "edited")
	var missingErr *MissingError
	assert.ErrorAs(t, err, &missingErr)
}

func TestCommentRepository_DeleteTopLevelCascades(t *testing.T) {
	db := setupSQLite(t)
	repo := NewCommentRepository(db)
	engagement := NewEngagementRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "writer")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, author, "thread")

	top := createComment(t, db, post, fan, nil)
	r1 := createComment(t, db, post, author, top)
	r2 := createComment(t, db, post, fan, top)
	bystander := createComment(t, db, post, fan, nil)

	for _, target := range []models.TargetRef{top.Target(), r1.Target(), r2.Target(), bystander.Target()} {
		_, err := engagement.Like(ctx, target, fan.ID)
		require.NoError(t, err)
	}

	deleted, err := repo.DeleteCascade(ctx, top.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	assert.Equal(t, 1, reloadPost(t, db, post.ID).CommentCount)
	for _, target := range []models.TargetRef{top.Target(), r1.Target(), r2.Target()} {
		assert.Zero(t, countLikes(t, db, target))
	}
	assert.Equal(t, int64(1), countLikes(t, db, bystander.Target()))

	_, err = repo.GetByID(ctx, r1.ID)
	var missingErr *MissingError
	assert.ErrorAs(t, err, &missingErr)
}

func TestCommentRepository_DeleteReplyReleasesParent(t *testing.T) {
	db := setupSQLite(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "writer")
	post := createPost(t, db, author, "thread")
	top := createComment(t, db, post, author, nil)
	reply := createComment(t, db, post, author, top)
	sibling := createComment(t, db, post, author, top)

	deleted, err := repo.DeleteCascade(ctx, reply.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	assert.Equal(t, 1, reloadComment(t, db, top.ID).ReplyCount)
	assert.Equal(t, 2, reloadPost(t, db, post.ID).CommentCount)
	reloadComment(t, db, sibling.ID)

	_, err = repo.DeleteCascade(ctx, reply.ID)
	var missingErr *MissingError
	assert.ErrorAs(t, err, &missingErr)
}

func TestCommentRepository_CreateRollsBackOnInsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)
	postID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, like_count, comment_count FROM "posts" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "like_count", "comment_count"}).AddRow(postID, 0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Comment{PostID: postID, UserID: 1, Content: "hi"})
	assert.EqualError(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func ptr[T any](v T) *T {
	return &v
}
