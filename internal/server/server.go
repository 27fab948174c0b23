// Package server contains the HTTP handlers for the forum API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campuscare/internal/cache"
	"campuscare/internal/config"
	"campuscare/internal/database"
	"campuscare/internal/middleware"
	"campuscare/internal/models"
	"campuscare/internal/notifications"
	"campuscare/internal/repository"
	"campuscare/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	auth           *middleware.Auth
	limiter        *middleware.RateLimiter

	store      repository.Store
	feed       *cache.Cache
	notifier   *notifications.Notifier
	moderation *service.ModerationService
	engagement *service.EngagementService
	flags      *service.FlagService
	comments   *service.CommentService
	queries    *service.QueryService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// nil when Redis is down; the feed cache and notifier degrade to no-ops
	redisClient := cache.Connect(context.Background(), cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	store := repository.NewStore(db)
	feed := cache.New(redisClient, cfg.FeedCacheTTL())
	notifier := notifications.NewNotifier(redisClient)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("campus-forum"),
		auth:           middleware.NewAuth(cfg.JWTSecret),
		limiter:        middleware.NewRateLimiter(redisClient, cfg.Env),
		store:          store,
		feed:           feed,
		notifier:       notifier,
		moderation:     service.NewModerationService(store, feed, notifier),
		engagement:     service.NewEngagementService(store, feed),
		flags:          service.NewFlagService(store, feed, notifier),
		comments:       service.NewCommentService(store, store.Users(), notifier),
		queries:        service.NewQueryService(store, store.Users(), feed),
	}, nil
}

// App returns the configured Fiber app, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName: "Campus Forum API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
			}
			slog.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "err", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewStorageError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + middleware.CorrelationHeader,
		AllowCredentials: true,
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

	api := app.Group("/api")
	api.Get("/categories", s.ListCategories)

	optional := s.auth.Optional()
	required := s.auth.Required()

	posts := api.Group("/posts")
	posts.Get("/", optional, s.ListPosts)
	posts.Post("/", required, s.limiter.Limit("submit", 10, time.Hour, middleware.FailOpen), s.SubmitPost)
	posts.Get("/:id", optional, s.GetPost)
	posts.Delete("/:id", required, s.DeletePost)
	posts.Get("/:id/comments", optional, s.ListComments)
	posts.Post("/:id/comments", required, s.limiter.Limit("comment", 30, time.Minute, middleware.FailOpen), s.AddComment)
	posts.Post("/:id/like", required, s.ToggleLike)
	posts.Get("/:id/liked", required, s.HasLiked)
	posts.Post("/:id/flag", required, s.limiter.Limit("flag", s.flagLimit(), time.Hour, middleware.FailOpen), s.FlagPost)
	posts.Get("/:id/flagged", required, s.HasFlagged)

	moderation := api.Group("/moderation", required, middleware.CounselorRequired())
	moderation.Get("/queue", s.ModerationQueue)
	moderation.Get("/flagged", s.FlaggedPosts)
	moderation.Get("/stats", s.ModerationStats)
	moderation.Get("/posts/:id/flags", s.PostFlags)
	moderation.Post("/posts/:id/approve", s.ApprovePost)
	moderation.Post("/posts/:id/reject", s.RejectPost)
	moderation.Post("/posts/:id/requeue", s.RequeuePost)
	moderation.Post("/posts/:id/clear-flags", s.ClearFlags)
}

func (s *Server) flagLimit() int {
	if s.config.FlagRateLimit > 0 {
		return s.config.FlagRateLimit
	}
	return 20
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so only
// the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	slog.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", "err", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", "err", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", "err", rerr)
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
