package main

import (
	"log"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/Vitaee/books-api/internal/config"
	"github.com/Vitaee/books-api/internal/infrastructure/queue"
	"github.com/Vitaee/books-api/internal/infrastructure/storage"
	"github.com/Vitaee/books-api/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	zlog := logger.New(cfg.App.Environment)

	store, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		zlog.Fatal().Err(err).Msg("object storage connection failed")
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
		},
	)

	mux := asynq.NewServeMux()
	handlers := newHandlers(store, zlog)
	mux.HandleFunc(queue.TypeDeleteCover, handlers.HandleDeleteCover)

	zlog.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		zlog.Fatal().Err(err).Msg("worker stopped")
	}
}
