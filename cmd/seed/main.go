// Command main runs the database seeder for the feed.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/middleware"
	"socialfeed/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numPosts := flag.Int("posts", defaults.NumPosts, "Number of posts to create")
	maxComments := flag.Int("comments", defaults.MaxComments, "Maximum top-level comments per post")
	maxReplies := flag.Int("replies", defaults.MaxReplies, "Maximum replies per comment")
	likeRatio := flag.Float64("like-ratio", defaults.LikeRatio, "Chance that a user likes a given post or comment")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	fast := flag.Bool("fast", false, "Skip bcrypt for seeded passwords")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	middleware.ConfigureLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	s, err := seed.NewSeeder(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxComments: *maxComments,
		MaxReplies:  *maxReplies,
		LikeRatio:   *likeRatio,
		ImageRatio:  defaults.ImageRatio,
		SkipBcrypt:  *fast,
		RandSeed:    *randSeed,
	})
	if err != nil {
		middleware.Logger.Error("Failed to build seeder", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			middleware.Logger.Error("Cleanup failed", "error", err)
			os.Exit(1)
		}
	}

	if _, err := s.Run(ctx); err != nil {
		middleware.Logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
	middleware.Logger.Info("All test users have the same password", "password", seed.DefaultPassword)
}
