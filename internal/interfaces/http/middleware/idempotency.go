package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	// MaxIdempotencyKeyLength caps client-supplied keys
	MaxIdempotencyKeyLength = 255
	defaultRequestKeyTTL    = 24 * time.Hour
)

// IdempotencyConfig configures the Idempotency-Key middleware
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	TTL   time.Duration
}

// Idempotency claims the request's Idempotency-Key before the handler runs.
// A key already claimed by the same actor for the same route within TTL is
// rejected with 409 DUPLICATE_REQUEST. Requests that end with a 4xx or 5xx
// release the key so the client may retry. Requests without the header pass
// through unchanged.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultRequestKeyTTL
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		storeKey := idempotencyStoreKey(c, key)
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)

		fresh, err := cfg.Store.MarkProcessed(ctx, storeKey, ttl)
		if err != nil {
			log.Error("Idempotency store unavailable", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				dto.NewErrorResponse(dto.ErrCodeServiceUnready, "Idempotency store unavailable", GetRequestID(c)))
			return
		}
		if !fresh {
			c.Set(logger.GinReplayedKey, true)
			c.Set(ErrorCodeKey, dto.ErrCodeDuplicateRequest)
			c.AbortWithStatusJSON(http.StatusConflict,
				dto.NewErrorResponse(dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already processed", GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Forget(context.WithoutCancel(ctx), storeKey); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func idempotencyStoreKey(c *gin.Context, key string) string {
	actorID := "anonymous"
	if actor, ok := GetActor(c); ok {
		actorID = actor.ID.String()
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return strings.Join([]string{actorID, c.Request.Method, route, key}, "|")
}
