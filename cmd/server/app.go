package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calvora/conduit/internal/config"
	"github.com/calvora/conduit/internal/platform/postgres"
	"github.com/calvora/conduit/internal/platform/rediscache"
	"github.com/calvora/conduit/internal/service"
	"github.com/calvora/conduit/internal/service/auth"
	"github.com/calvora/conduit/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	redisClient *redis.Client

	userStore    store.UserStore
	articleStore store.ArticleStore
	commentStore store.CommentStore

	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier

	userService    service.UserService
	articleService service.ArticleService
	commentService service.CommentService
}

// newApplication wires every dependency of the server from the loaded
// configuration: database, optional Redis cache, stores and services.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Cache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		redisClient = redis.NewClient(opts)
		logger.Info("redis tag cache enabled")
	}

	userStore := postgres.NewPostgresUserStore(db, logger)
	articleStore := postgres.NewPostgresArticleStore(db, logger)
	commentStore := postgres.NewPostgresCommentStore(db, logger)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	hasher := auth.NewBcryptHasher(0)

	userService, err := service.NewUserService(userStore, db, hasher, hasher, jwtService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	tagCache := rediscache.NewTagCache(redisClient, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	articleService, err := service.NewArticleService(articleStore, userStore, db, tagCache, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create article service: %w", err)
	}

	commentService, err := service.NewCommentService(commentStore, articleStore, userStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment service: %w", err)
	}

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		redisClient:      redisClient,
		userStore:        userStore,
		articleStore:     articleStore,
		commentStore:     commentStore,
		jwtService:       jwtService,
		passwordHasher:   hasher,
		passwordVerifier: hasher,
		userService:      userService,
		articleService:   articleService,
		commentService:   commentService,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error("failed to close redis client", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
