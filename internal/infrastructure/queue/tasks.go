// Package queue holds the asynq task definitions and the enqueue client.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TypeDeleteCover removes an orphaned cover object from storage after a
	// book is deleted or its cover replaced.
	TypeDeleteCover = "book:delete_cover"
)

// DeleteCoverPayload names the object to remove.
type DeleteCoverPayload struct {
	Key string `json:"key"`
}

// NewDeleteCoverTask builds the task with a bounded retry count.
func NewDeleteCoverTask(key string) (*asynq.Task, error) {
	payload, err := json.Marshal(DeleteCoverPayload{Key: key})
	if err != nil {
		return nil, fmt.Errorf("marshal delete cover payload: %w", err)
	}
	return asynq.NewTask(TypeDeleteCover, payload, asynq.MaxRetry(5)), nil
}
