package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/Vitaee/books-api/internal/config"
)

// Client enqueues background tasks over Redis.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// EnqueueDeleteCover schedules removal of a stored cover object.
func (c *Client) EnqueueDeleteCover(ctx context.Context, key string) error {
	task, err := NewDeleteCoverTask(key)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeDeleteCover, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
