package cache

import (
	"context"
	"time"
)

// Store is the minimal cache surface used by the refinement layer. Both the
// Redis client and the in-memory fallback implement it; a cache miss is
// never an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, expiration time.Duration)
}
