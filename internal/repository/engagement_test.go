package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"socialfeed/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementRepository_LikeIsIdempotent(t *testing.T) {
	db := setupSQLite(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "writer")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, author, "likeable")

	first, err := repo.Like(ctx, post.Target(), fan.ID)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Equal(t, 1, first.LikeCount)

	again, err := repo.Like(ctx, post.Target(), fan.ID)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, 1, again.LikeCount)

	assert.Equal(t, 1, reloadPost(t, db, post.ID).LikeCount)
	assert.Equal(t, int64(1), countLikes(t, db, post.Target()))

	liked, err := repo.IsLiked(ctx, post.Target(), fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestEngagementRepository_UnlikeIsIdempotent(t *testing.T) {
	db := setupSQLite(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "writer")
	fan := createUser(t, db, "fan")
	post := createPost(t, db, author, "thread")
	comment := createComment(t, db, post, author, nil)

	notLiked, err := repo.Unlike(ctx, comment.Target(), fan.ID)
	require.NoError(t, err)
	assert.False(t, notLiked.Changed)
	assert.Equal(t, 0, notLiked.LikeCount)

	_, err = repo.Like(ctx, comment.Target(), fan.ID)
	require.NoError(t, err)

	removed, err := repo.Unlike(ctx, comment.Target(), fan.ID)
	require.NoError(t, err)
	assert.True(t, removed.Changed)
	assert.Equal(t, 0, removed.LikeCount)
	assert.Equal(t, 0, reloadComment(t, db, comment.ID).LikeCount)

	count, err := repo.LikeCount(ctx, comment.Target())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngagementRepository_MissingTarget(t *testing.T) {
	db := setupSQLite(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	fan := createUser(t, db, "fan")

	target := models.TargetRef{Type: models.TargetComment, ID: uuid.New()}

	_, err := repo.Like(ctx, target, fan.ID)
	var missingErr *MissingError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, "Comment", missingErr.Resource)

	_, err = repo.Unlike(ctx, target, fan.ID)
	assert.ErrorAs(t, err, &missingErr)

	_, err = repo.LikeCount(ctx, target)
	assert.ErrorAs(t, err, &missingErr)

	assert.Zero(t, countLikes(t, db, target))
}

func TestEngagementRepository_ConcurrentLikes(t *testing.T) {
	db := setupSQLite(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "writer")
	post := createPost(t, db, author, "viral")

	const fans = 8
	users := make([]*models.User, fans)
	for i := range users {
		users[i] = createUser(t, db, fmt.Sprintf("fan%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, fans*2)
	for _, u := range users {
		for range 2 {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				if _, err := repo.Like(ctx, post.Target(), id); err != nil {
					errs <- err
				}
			}(u.ID)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, fans, reloadPost(t, db, post.ID).LikeCount)
	assert.Equal(t, int64(fans), countLikes(t, db, post.Target()))
}

func TestEngagementRepository_LikersAndLikedIDs(t *testing.T) {
	db := setupSQLite(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "writer")
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	post := createPost(t, db, author, "thread")
	c1 := createComment(t, db, post, author, nil)
	c2 := createComment(t, db, post, author, nil)

	_, err := repo.Like(ctx, c1.Target(), alice.ID)
	require.NoError(t, err)
	_, err = repo.Like(ctx, c1.Target(), bob.ID)
	require.NoError(t, err)

	likers, err := repo.Likers(ctx, c1.Target())
	require.NoError(t, err)
	require.Len(t, likers, 2)
	assert.Equal(t, "alice", likers[0].Username)
	assert.Equal(t, "bob", likers[1].Username)

	liked, err := repo.LikedTargetIDs(ctx, models.TargetComment, alice.ID, []uuid.UUID{c1.ID, c2.ID})
	require.NoError(t, err)
	assert.True(t, liked[c1.ID])
	assert.False(t, liked[c2.ID])

	anon, err := repo.LikedTargetIDs(ctx, models.TargetComment, 0, []uuid.UUID{c1.ID})
	require.NoError(t, err)
	assert.Empty(t, anon)

	isLiked, err := repo.IsLiked(ctx, c1.Target(), 0)
	require.NoError(t, err)
	assert.False(t, isLiked)
}

func TestEngagementRepository_LikedPostsMostRecentFirst(t *testing.T) {
	db := setupSQLite(t)
	repo := NewEngagementRepository(db)
	ctx := context.Background()
	author := createUser(t, db, "writer")
	fan := createUser(t, db, "fan")

	older := createPost(t, db, author, "older")
	newer := createPost(t, db, author, "newer")
	ignored := createPost(t, db, author, "ignored")

	_, err := repo.Like(ctx, newer.Target(), fan.ID)
	require.NoError(t, err)
	_, err = repo.Like(ctx, older.Target(), fan.ID)
	require.NoError(t, err)
	_, err = repo.Like(ctx, ignored.Target(), author.ID)
	require.NoError(t, err)

	posts, err := repo.LikedPosts(ctx, fan.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, older.ID, posts[0].ID)
	assert.Equal(t, newer.ID, posts[1].ID)
	assert.Equal(t, "writer", posts[0].User.Username)
}

func TestEngagementRepository_LikeRollsBackOnInsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewEngagementRepository(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, like_count, comment_count FROM "posts" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "like_count", "comment_count"}).AddRow(id, 3, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "likes"`)).
		WillReturnError(errors.New("connection refused"))
	mock.ExpectRollback()

	res, err := repo.Like(context.Background(), models.TargetRef{Type: models.TargetPost, ID: id}, 7)
	assert.Nil(t, res)
	assert.EqualError(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
