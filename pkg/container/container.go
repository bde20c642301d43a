// Package container builds the full dependency graph in one place. Order
// matters: config, then infrastructure, then repositories, services and
// handlers.
package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/config"
	"github.com/Vitaee/books-api/internal/domains/book"
	bookHandler "github.com/Vitaee/books-api/internal/domains/book/handler"
	bookRepo "github.com/Vitaee/books-api/internal/domains/book/repository"
	bookService "github.com/Vitaee/books-api/internal/domains/book/service"
	"github.com/Vitaee/books-api/internal/domains/user"
	userHandler "github.com/Vitaee/books-api/internal/domains/user/handler"
	userRepo "github.com/Vitaee/books-api/internal/domains/user/repository"
	userService "github.com/Vitaee/books-api/internal/domains/user/service"
	infraCache "github.com/Vitaee/books-api/internal/infrastructure/cache"
	"github.com/Vitaee/books-api/internal/infrastructure/database"
	"github.com/Vitaee/books-api/internal/infrastructure/queue"
	"github.com/Vitaee/books-api/internal/infrastructure/storage"
	"github.com/Vitaee/books-api/pkg/cache"
	"github.com/Vitaee/books-api/pkg/jwt"
	"github.com/Vitaee/books-api/pkg/logger"
)

type Container struct {
	Config *config.Config
	Log    zerolog.Logger

	DB      *database.PostgresDB
	Cache   cache.Cache
	Redis   *redis.Client
	Storage *storage.MinIOStorage
	Queue   *queue.Client
	Tokens  *jwt.Manager

	UserRepo user.Repository
	BookRepo book.Repository

	UserService  user.Service
	BookService  book.Service
	CoverService book.CoverService

	UserHandler *userHandler.Handler
	BookHandler *bookHandler.Handler
}

// New builds the container and establishes every external connection. On
// error the partially built container is already cleaned up.
func New(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	c := &Container{
		Config: cfg,
		Log:    logger.New(cfg.App.Environment),
	}

	c.DB = database.New(cfg.Database, c.Log)
	if err := c.DB.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := c.DB.RunMigrations(ctx); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	c.Cache, c.Redis, err = infraCache.NewRedisCache(cfg.Redis)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	c.Storage, err = storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("connect object storage: %w", err)
	}

	c.Queue = queue.NewClient(cfg.Redis)
	c.Tokens = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	c.UserRepo = userRepo.NewPostgresRepository(c.DB.Pool, c.Log)
	c.BookRepo = bookRepo.NewPostgresRepository(c.DB.Pool, c.Cache, c.Log)

	c.UserService = userService.NewAuthService(c.UserRepo, c.Tokens, c.Log)
	c.BookService = bookService.NewBookService(c.BookRepo, c.Queue, c.Storage, c.Log)
	c.CoverService = bookService.NewCoverService(c.BookRepo, c.Storage, c.Queue, c.Log)

	c.UserHandler = userHandler.NewHandler(c.UserService)
	c.BookHandler = bookHandler.NewHandler(c.BookService, c.CoverService)

	c.Log.Info().
		Str("environment", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("container initialized")
	return c, nil
}

// Cleanup releases external connections in reverse initialization order.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			c.Log.Warn().Err(err).Msg("queue client close failed")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Log.Warn().Err(err).Msg("redis close failed")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
