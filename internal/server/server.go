// Package server contains the HTTP handlers for the feed API.
package server

import (
	"context"
	"fmt"
	"time"

	_ "socialfeed/docs" // swagger docs
	"socialfeed/internal/bootstrap"
	"socialfeed/internal/config"
	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/notifications"
	"socialfeed/internal/repository"
	"socialfeed/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "socialfeed-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	notifier          *notifications.Notifier
	postService       *service.PostService
	commentService    *service.CommentService
	engagementService *service.EngagementService
	userService       *service.UserService
}

// NewServer connects the database and Redis and builds a server on top of them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedDemo: cfg.SeedDemo})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching and event publishing are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	var store service.ImageStore
	if cfg.CloudinaryURL != "" {
		cld, err := service.NewCloudinaryImageStore(cfg.CloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("cloudinary configuration failed: %w", err)
		}
		store = cld
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)

	return &Server{
		config:            cfg,
		db:                db,
		redis:             redisClient,
		promMiddleware:    middleware.InitMetrics(serviceName),
		notifier:          notifications.NewNotifier(redisClient),
		postService:       service.NewPostService(postRepo, engagementRepo, service.NewImageProcessor(store)),
		commentService:    service.NewCommentService(commentRepo, postRepo, engagementRepo),
		engagementService: service.NewEngagementService(engagementRepo),
		userService:       service.NewUserService(userRepo, cfg.JWTSecret),
	}, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Social Feed API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Social Feed Metrics"}))

	authRequired := middleware.AuthRequired(s.config.JWTSecret)
	optionalAuth := middleware.OptionalAuth(s.config.JWTSecret)

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)

	users := api.Group("/users")
	users.Get("/me", authRequired, s.GetMyProfile)
	users.Get("/:userId", s.GetUserProfile)

	posts := api.Group("/posts")
	posts.Get("/", optionalAuth, s.GetPosts)
	// Static segments before /:postId
	posts.Get("/liked", authRequired, s.GetLikedPosts)
	posts.Post("/", authRequired, s.CreatePost)
	posts.Get("/:postId/check-like", authRequired, s.CheckPostLike)
	posts.Post("/:postId/like", authRequired, s.LikePost)
	posts.Post("/:postId/unlike", authRequired, s.UnlikePost)
	posts.Get("/:postId", optionalAuth, s.GetPost)
	posts.Put("/:postId", authRequired, s.UpdatePost)
	posts.Delete("/:postId", authRequired, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/post/:postId", optionalAuth, s.GetComments)
	comments.Post("/post/:postId", authRequired, s.CreateComment)
	comments.Get("/count/:postId", s.GetCommentCount)
	comments.Get("/replies/:commentId", optionalAuth, s.GetReplies)
	comments.Get("/detail/:commentId", optionalAuth, s.GetCommentDetail)
	comments.Post("/like/:commentId", authRequired, s.LikeComment)
	comments.Post("/unlike/:commentId", authRequired, s.UnlikeComment)
	comments.Get("/check-like/:commentId", authRequired, s.CheckCommentLike)
	comments.Put("/:commentId", authRequired, s.UpdateComment)
	comments.Delete("/:commentId", authRequired, s.DeleteComment)
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports the database as required and Redis as optional.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
