package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that have already been processed.
// It backs both event-handler deduplication and the HTTP Idempotency-Key header.
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget removes a key so the operation may be attempted again
	Forget(ctx context.Context, key string) error

	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a processed key is remembered. Default: 24 hours.
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
