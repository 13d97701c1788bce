package ports

import (
	"context"
	"time"
)

// Cache is a key-value store with per-entry TTL used for computed reports.
// A ttl of zero stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
