// Package notifications publishes domain events to Redis pub/sub for
// downstream consumers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// FeedChannel carries every feed event.
const FeedChannel = "feed:events"

// Event type constants prevent typos in event names.
const (
	EventPostCreated    = "post_created"
	EventPostUpdated    = "post_updated"
	EventPostDeleted    = "post_deleted"
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventCommentCreated = "comment_created"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
	EventCommentLiked   = "comment_liked"
	EventCommentUnliked = "comment_unliked"
)

// Event is the envelope published on Redis channels.
type Event struct {
	Type       string         `json:"type"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether events actually leave the process.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishEvent sends an event to the feed channel.
func (n *Notifier) PublishEvent(ctx context.Context, eventType string, payload map[string]any) error {
	return n.publish(ctx, FeedChannel, eventType, payload)
}

// PublishUser sends an event to a single user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, eventType string, payload map[string]any) error {
	return n.publish(ctx, UserChannel(userID), eventType, payload)
}

func (n *Notifier) publish(ctx context.Context, channel, eventType string, payload map[string]any) error {
	if !n.Enabled() {
		return nil
	}
	body, err := json.Marshal(Event{Type: eventType, Payload: payload, OccurredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return n.rdb.Publish(ctx, channel, body).Err()
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
