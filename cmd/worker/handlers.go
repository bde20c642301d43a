package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Vitaee/books-api/internal/infrastructure/queue"
	"github.com/Vitaee/books-api/internal/infrastructure/storage"
)

type handlers struct {
	storage *storage.MinIOStorage
	log     zerolog.Logger
}

func newHandlers(st *storage.MinIOStorage, log zerolog.Logger) *handlers {
	return &handlers{storage: st, log: log}
}

// HandleDeleteCover removes a cover object left behind by a deleted book or
// a replaced cover. Delete is idempotent, so retries after partial failures
// are safe.
func (h *handlers) HandleDeleteCover(ctx context.Context, t *asynq.Task) error {
	var p queue.DeleteCoverPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// A malformed payload never becomes valid; do not retry it.
		return fmt.Errorf("unmarshal %s payload: %v: %w", queue.TypeDeleteCover, err, asynq.SkipRetry)
	}

	if err := h.storage.Delete(ctx, p.Key); err != nil {
		h.log.Warn().Err(err).Str("key", p.Key).Msg("cover delete failed, will retry")
		return err
	}

	h.log.Info().Str("key", p.Key).Msg("cover object removed")
	return nil
}
