package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"socialfeed/internal/models"
	"socialfeed/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementService_LikeTwiceReportsAlreadyLiked(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "writer")
	fan := f.user(t, "fan")
	post := f.post(t, author)

	first, err := f.engagement.Like(ctx, postTarget(post), fan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeLiked, first.Status)
	assert.Equal(t, 1, first.LikeCount)
	assert.True(t, first.IsLiked)

	second, err := f.engagement.Like(ctx, postTarget(post), fan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAlreadyLiked, second.Status)
	assert.Equal(t, first.LikeCount, second.LikeCount)
	assert.True(t, second.IsLiked)
}

func TestEngagementService_LikeThenUnlikeRestoresCount(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "writer")
	fan := f.user(t, "fan")
	other := f.user(t, "other")
	post := f.post(t, author)

	_, err := f.engagement.Like(ctx, postTarget(post), other.ID)
	require.NoError(t, err)
	before := f.postRow(t, post.ID).LikeCount

	_, err = f.engagement.Like(ctx, postTarget(post), fan.ID)
	require.NoError(t, err)
	state, err := f.engagement.Unlike(ctx, postTarget(post), fan.ID)
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeUnliked, state.Status)
	assert.Equal(t, before, state.LikeCount)
	assert.False(t, state.IsLiked)

	again, err := f.engagement.Unlike(ctx, postTarget(post), fan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeNotLiked, again.Status)
	assert.Equal(t, before, again.LikeCount)

	liked, err := f.engagement.IsLikedBy(ctx, postTarget(post), fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestEngagementService_CountMatchesSetAfterAnySequence(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "writer")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	post := f.post(t, author)
	comment := f.comment(t, post, author, nil)

	steps := []struct {
		like   bool
		target models.TargetRef
		user   uint
	}{
		{true, postTarget(post), alice.ID},
		{true, postTarget(post), alice.ID},
		{false, postTarget(post), bob.ID},
		{true, commentTarget(comment), bob.ID},
		{true, postTarget(post), bob.ID},
		{false, postTarget(post), alice.ID},
		{false, commentTarget(comment), alice.ID},
		{true, commentTarget(comment), alice.ID},
		{true, models.TargetRef{Type: models.TargetPost, ID: uuid.New()}, alice.ID},
		{true, postTarget(post), 0},
	}

	for i, step := range steps {
		if step.like {
			_, _ = f.engagement.Like(ctx, step.target, step.user)
		} else {
			_, _ = f.engagement.Unlike(ctx, step.target, step.user)
		}
		assert.Equal(t, f.likeRows(t, postTarget(post)), f.postRow(t, post.ID).LikeCount, "post after step %d", i)
		assert.Equal(t, f.likeRows(t, commentTarget(comment)), f.commentRow(t, comment.ID).LikeCount, "comment after step %d", i)
	}
	assert.Equal(t, 1, f.postRow(t, post.ID).LikeCount)
	assert.Equal(t, 2, f.commentRow(t, comment.ID).LikeCount)
}

func TestEngagementService_ConcurrentTogglesKeepCountConsistent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "writer")
	post := f.post(t, author)
	target := postTarget(post)

	users := make([]*models.User, 6)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("fan%d", i))
	}

	var wg sync.WaitGroup
	for i, u := range users {
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(userID uint, like bool) {
				defer wg.Done()
				if like {
					_, _ = f.engagement.Like(ctx, target, userID)
				} else {
					_, _ = f.engagement.Unlike(ctx, target, userID)
				}
			}(u.ID, (i+j)%3 != 0)
		}
	}
	wg.Wait()

	assert.Equal(t, f.likeRows(t, target), f.postRow(t, post.ID).LikeCount)
}

func TestEngagementService_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "writer")
	post := f.post(t, author)

	_, err := f.engagement.Like(ctx, models.TargetRef{Type: models.TargetComment, ID: uuid.New()}, author.ID)
	assertAppError(t, err, models.CodeNotFound)

	_, err = f.engagement.Unlike(ctx, models.TargetRef{Type: models.TargetPost, ID: uuid.New()}, author.ID)
	assertAppError(t, err, models.CodeNotFound)

	_, err = f.engagement.Like(ctx, postTarget(post), 0)
	assertAppError(t, err, models.CodeUnauthorized)

	_, err = f.engagement.State(ctx, models.TargetRef{Type: models.TargetPost, ID: uuid.New()}, author.ID)
	assertAppError(t, err, models.CodeNotFound)
}

func TestEngagementService_CommentLikersAndLikedPosts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "writer")
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	older := f.post(t, author)
	newer := f.post(t, author)
	comment := f.comment(t, older, author, nil)

	_, err := f.engagement.Like(ctx, commentTarget(comment), alice.ID)
	require.NoError(t, err)
	_, err = f.engagement.Like(ctx, commentTarget(comment), bob.ID)
	require.NoError(t, err)

	likers, err := f.engagement.CommentLikers(ctx, comment.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, likers.IsLiked)
	assert.Equal(t, 2, likers.Likes)
	require.Len(t, likers.LikedBy, 2)
	assert.Equal(t, "alice", likers.LikedBy[0].Username)

	anon, err := f.engagement.CommentLikers(ctx, comment.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.IsLiked)

	_, err = f.engagement.CommentLikers(ctx, uuid.New(), alice.ID)
	assertAppError(t, err, models.CodeNotFound)

	_, err = f.engagement.Like(ctx, postTarget(older), alice.ID)
	require.NoError(t, err)
	_, err = f.engagement.Like(ctx, postTarget(newer), alice.ID)
	require.NoError(t, err)

	posts, err := f.engagement.LikedPosts(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.True(t, posts[0].IsLiked)
	assert.Equal(t, 1, posts[0].Likes)
}

// engagementRepoStub is a stub for repository.EngagementRepository.
type engagementRepoStub struct {
	repository.EngagementRepository
	likeFn func(context.Context, models.TargetRef, uint) (*repository.ToggleResult, error)
}

func (s *engagementRepoStub) Like(ctx context.Context, target models.TargetRef, userID uint) (*repository.ToggleResult, error) {
	return s.likeFn(ctx, target, userID)
}

func TestEngagementService_StorageFailureIsInternal(t *testing.T) {
	t.Parallel()
	repo := &engagementRepoStub{
		likeFn: func(context.Context, models.TargetRef, uint) (*repository.ToggleResult, error) {
			return nil, errors.New("connection reset by peer")
		},
	}
	svc := NewEngagementService(repo)

	_, err := svc.Like(context.Background(), models.TargetRef{Type: models.TargetPost, ID: uuid.New()}, 1)
	assertAppError(t, err, models.CodeInternal)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Internal server error", appErr.Message)
}
