// Package server exposes the graph, feed, post and story services over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"snapgram/internal/cache"
	"snapgram/internal/config"
	"snapgram/internal/middleware"
	"snapgram/internal/models"
	"snapgram/internal/observability"
	"snapgram/internal/repository"
	"snapgram/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
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

	userService  *service.UserService
	graphService *service.GraphService
	feedService  *service.FeedService
	postService  *service.PostService
	storyService *service.StoryService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case profile caching is disabled. The
// caller keeps ownership of db and redisClient until Shutdown.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	c := cache.New(redisClient)
	opts := service.OptionsFromConfig(cfg)

	userRepo := repository.NewUserRepository(db, c)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	storyRepo := repository.NewStoryRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("snapgram-api"),
		userService:    service.NewUserService(userRepo, opts),
		graphService:   service.NewGraphService(userRepo, followRepo, c, opts),
		feedService:    service.NewFeedService(userRepo, followRepo, postRepo, opts),
		postService:    service.NewPostService(postRepo, userRepo, opts),
		storyService:   service.NewStoryService(storyRepo, userRepo, opts),
	}
}

// NewApp builds the fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Snapgram API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
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
		app.Use(s.promMiddleware.Middleware)
	}
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.allowedOrigins(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowCredentials: !strings.Contains(s.allowedOrigins(), "*"),
		MaxAge:           86400,
	}))

	if s.config.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        s.config.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
					Error: "Too many requests, please try again later.",
					Code:  "RATE_LIMITED",
				})
			},
		}))
	}
}

func (s *Server) allowedOrigins() string {
	if s.config.AllowedOrigins == "" {
		return "http://localhost:5173,http://localhost:3000"
	}
	return s.config.AllowedOrigins
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Post("/auth/register", s.Register)

	protected := api.Group("", middleware.AuthRequired(s.config.JWTSecret))

	users := protected.Group("/users")
	users.Post("/follow/:id", s.Follow)
	users.Post("/unfollow/:id", s.Unfollow)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id", s.GetUserProfile)

	protected.Get("/feed/home", s.GetHomeFeed)

	posts := protected.Group("/posts")
	posts.Post("/", s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Post("/:id/share", s.SharePost)

	stories := protected.Group("/stories")
	stories.Post("/", s.CreateStory)
	stories.Get("/user/:id", s.GetUserStories)
	stories.Get("/:id", s.GetStory)
	stories.Post("/:id/view", s.ViewStory)
	stories.Post("/:id/reactions", s.ReactToStory)
}

// HealthCheck reports database and cache reachability.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
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

	// Redis only backs a cache, so it never fails the check.
	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":    overall,
		"timestamp": time.Now().UTC(),
		"services": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

// Start listens on the configured port and blocks until the app stops.
func (s *Server) Start() error {
	s.app = s.NewApp()
	observability.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and releases the store handles.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			observability.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			return fmt.Errorf("close database: %w", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			return fmt.Errorf("close redis: %w", rerr)
		}
	}
	return nil
}
