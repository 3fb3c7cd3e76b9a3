package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishEvent(context.Background(), EventPostLiked, map[string]any{"likes": 1}))
	assert.NoError(t, n.PublishUser(context.Background(), 1, EventCommentCreated, nil))

	var missing *Notifier
	assert.False(t, missing.Enabled())
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}

func TestNotifier_PublishEventDelivers(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := rdb.Subscribe(ctx, FeedChannel, UserChannel(7))
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	n := NewNotifier(rdb)
	require.NoError(t, n.PublishEvent(ctx, EventCommentDeleted, map[string]any{"deleted_count": 3}))
	require.NoError(t, n.PublishUser(ctx, 7, EventPostLiked, map[string]any{"likes": 1}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, FeedChannel, msg.Channel)

	var evt Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
	assert.Equal(t, EventCommentDeleted, evt.Type)
	assert.Equal(t, float64(3), evt.Payload["deleted_count"])
	assert.False(t, evt.OccurredAt.IsZero())

	msg, err = sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "notifications:user:7", msg.Channel)
}
