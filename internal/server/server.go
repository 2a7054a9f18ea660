// Package server contains the HTTP and WebSocket handlers of the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "recipebox/docs" // swagger docs
	"recipebox/internal/cache"
	"recipebox/internal/config"
	"recipebox/internal/database"
	"recipebox/internal/featureflags"
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/notifications"
	"recipebox/internal/repository"
	"recipebox/internal/service"
	"recipebox/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const bodyLimit = 16 * 1024 * 1024

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.FileStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	authService       *service.AuthService
	tagService        *service.TagService
	ingredientService *service.IngredientService
	postService       *service.PostService
	imageService      *service.ImageService
	commentService    *service.CommentService
	rateService       *service.RateService
	addressService    *service.AddressService
	userService       *service.UserService
}

// NewServer connects the database, Redis and media store described by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	store, err := storage.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}
	return NewServerWithDeps(cfg, db, cache.GetClient(), store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, revocation and live events are then off.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.FileStore) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("media store is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)

	ttl := time.Duration(cfg.JWTTTLHours) * time.Hour

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		store:          store,
		promMiddleware: middleware.InitMetrics("recipebox-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	var events service.EventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		events = s.notifier
	}

	s.imageService = service.NewImageService(repository.NewImageRepository(db), postRepo, store, events, cfg)
	s.authService = service.NewAuthService(userRepo, redisClient, cfg.JWTSecret, ttl)
	s.tagService = service.NewTagService(tagRepo)
	s.ingredientService = service.NewIngredientService(ingredientRepo)
	s.postService = service.NewPostService(postRepo, tagRepo, ingredientRepo, s.imageService)
	s.commentService = service.NewCommentService(repository.NewCommentRepository(db), postRepo, events)
	s.rateService = service.NewRateService(repository.NewRateRepository(db), postRepo, events)
	s.addressService = service.NewAddressService(repository.NewAddressRepository(db))
	s.userService = service.NewUserService(userRepo, s.imageService)

	return s, nil
}

// NewApp builds the fiber application with middleware and routes.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Recipebox API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, &models.AppError{Code: codeForStatus(fe.Code), Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
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
	app.Use(middleware.ContextMiddleware())
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(middleware.TracingMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := s.store.(*storage.LocalStore); ok {
		app.Static(mediaPrefix(s.config.MediaURL), local.Root(), fiber.Static{ByteRange: true})
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Recipebox Metrics"}))

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	protected := api.Group("", s.AuthRequired())

	tags := protected.Group("/tags")
	tags.Get("/", s.ListTags)
	tags.Post("/", s.CreateTag)

	ingredients := protected.Group("/ingredients")
	ingredients.Get("/", s.ListIngredients)
	ingredients.Post("/", s.CreateIngredient)

	posts := protected.Group("/posts")
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.CreatePost)
	// Specific /:id/:resource routes before the generic /:id routes.
	posts.Post("/:id/upload-image", s.requireFlag(featureflags.PostImages), s.UploadPostImage)
	posts.Get("/:id/comments", s.ListComments)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 30, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Get("/:id/rates", s.GetRateSummary)
	posts.Put("/:id/rates", s.RatePost)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.ReplacePost)
	posts.Patch("/:id", s.PatchPost)
	posts.Delete("/:id", s.DeletePost)

	addresses := protected.Group("/addresses")
	addresses.Get("/", s.ListAddresses)
	addresses.Post("/", s.CreateAddress)
	addresses.Get("/:id", s.GetAddress)
	addresses.Put("/:id", s.ReplaceAddress)
	addresses.Patch("/:id", s.PatchAddress)
	addresses.Delete("/:id", s.DeleteAddress)

	users := protected.Group("/users")
	users.Get("/me", s.GetMe)
	users.Patch("/me", s.UpdateMe)
	users.Put("/me/avatar", s.UploadAvatar)
	users.Delete("/me", s.DeleteMe)

	protected.Get("/ws", s.requireFlag(featureflags.ActivityStream), s.WebsocketUpgrade, s.WebsocketHandler())
}

func mediaPrefix(mediaURL string) string {
	p := strings.TrimSuffix(mediaURL, "/")
	if p == "" || strings.Contains(p, "://") {
		return "/media"
	}
	return p
}

// LivenessCheck handles liveness check requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// its absence alone does not fail readiness.
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
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
