package usecase

import (
	"context"
	"time"
)

// ListCache is the slice of the cache the job usecases need. Implementations
// are allowed to degrade to no-ops when the backing store is unavailable.
type ListCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}
