// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"socialfeed/internal/cache"
	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
// The returned Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if opts.SeedDemo {
		if err := SeedDemoIfEmpty(ctx, cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}
	return db, rdb, nil
}

// SeedDemoIfEmpty fills an empty development database with demo content.
// Other environments and populated databases are left untouched.
func SeedDemoIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if env := strings.ToLower(cfg.Env); env != "development" && env != "test" {
		middleware.Logger.WarnContext(ctx, "demo seeding skipped outside development", slog.String("env", cfg.Env))
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.InfoContext(ctx, "demo seeding skipped, database not empty", slog.Int64("users", users))
		return nil
	}

	s, err := seed.NewSeeder(db, seed.DefaultOptions())
	if err != nil {
		return err
	}
	_, err = s.Run(ctx)
	return err
}
