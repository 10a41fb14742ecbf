package cache

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Key namespaces for the two users of the idempotency store
const (
	EventKeyPrefix   = "mfg:event:"
	RequestKeyPrefix = "mfg:request:"
)

// NewIdempotencyStore builds the store selected by event.idempotency_backend.
// With the redis backend a connection failure is fatal in production and
// falls back to memory elsewhere.
func NewIdempotencyStore(ctx context.Context, cfg *config.Config, keyPrefix string, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if cfg.Event.IdempotencyBackend != config.IdempotencyBackendRedis {
		return NewInMemoryIdempotencyStore(0), nil
	}

	client, err := NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		if cfg.App.Env == "production" {
			return nil, fmt.Errorf("redis idempotency store: %w", err)
		}
		logger.Warn("Redis unavailable, using in-memory idempotency store",
			zap.String("prefix", keyPrefix),
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(0), nil
	}

	logger.Info("Using Redis idempotency store",
		zap.String("addr", cfg.Redis.Addr()),
		zap.String("prefix", keyPrefix),
	)
	store := NewRedisIdempotencyStore(client, keyPrefix)
	store.ownClient = true
	return store, nil
}
