package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"socialfeed/internal/middleware"
	"socialfeed/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	PostKeyPrefix = "post:%s"
	UserKeyPrefix = "user:%d"
)

const (
	PostTTL = 30 * time.Minute
	UserTTL = 5 * time.Minute

	versionTTL = 24 * time.Hour
)

func PostKey(postID uuid.UUID) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// Aside loads key into dest, falling back to load on a miss and storing the
// result for ttl. Redis failures degrade to calling load directly. The store
// is skipped when Invalidate ran for key while load was in flight.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if client == nil {
		return load()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		Invalidate(ctx, key)
	case !errors.Is(err, redis.Nil):
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	observability.CacheLookups.WithLabelValues("miss").Inc()

	version, err := client.Get(ctx, versionKey(key)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache version read failed", slog.String("key", key), slog.String("error", err.Error()))
		return load()
	}

	if err := load(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	store(ctx, key, version, payload, ttl)
	return nil
}

var errStale = errors.New("cache: key invalidated during load")

// store writes payload only while key's version still equals version.
func store(ctx context.Context, key string, version int64, payload []byte, ttl time.Duration) {
	vkey := versionKey(key)
	err := client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, vkey)

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		observability.CacheLookups.WithLabelValues("stale").Inc()
		middleware.Logger.DebugContext(ctx, "cache write skipped", slog.String("key", key))
	default:
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func versionKey(key string) string {
	return key + ":ver"
}

// Invalidate drops key and bumps its version so loads already in flight do
// not write back. It is a no-op without Redis.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	vkey := versionKey(key)
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vkey)
		pipe.Expire(ctx, vkey, versionTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func InvalidatePost(ctx context.Context, postID uuid.UUID) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
