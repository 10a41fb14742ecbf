package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore shares processed keys between service instances.
// Marking is a single SET NX with expiry, so two instances racing on the
// same key get exactly one winner.
type RedisIdempotencyStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ownClient bool
}

// NewRedisClient builds a client from config and verifies it with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewRedisIdempotencyStore wraps an existing client. Keys are namespaced
// with keyPrefix so event dedupe and HTTP request keys never collide.
func NewRedisIdempotencyStore(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed sets the key if absent
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark idempotency key: %w", err)
	}
	return ok, nil
}

// IsProcessed checks whether the key exists
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check idempotency key: %w", err)
	}
	return n > 0, nil
}

// Forget deletes the key
func (s *RedisIdempotencyStore) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("forget idempotency key: %w", err)
	}
	return nil
}

// Close closes the client only when the store created it
func (s *RedisIdempotencyStore) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
