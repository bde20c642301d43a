// Package cache defines the cache contract used by repositories. The Redis
// implementation lives in internal/infrastructure/cache.
package cache

import (
	"context"
	"time"
)

// Cache is a read-through cache. Get reports (found, err); on a miss dest is
// left untouched. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}
