package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// IdempotencyStats is a snapshot of an IdempotentHandler's counters
type IdempotencyStats struct {
	Processed  int64 `json:"processed"`
	Duplicates int64 `json:"duplicates"`
	Failed     int64 `json:"failed"`
}

// IdempotentHandler wraps an EventHandler so that each event ID is handled
// at most once within the TTL, even when delivered repeatedly.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger

	processed  atomic.Int64
	duplicates atomic.Int64
	failed     atomic.Int64
}

// NewIdempotentHandler wraps handler. A non-positive ttl uses the default.
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		ttl:     ttl,
		logger:  logger,
	}
}

// EventTypes delegates to the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle claims the event ID, then runs the wrapped handler. If the handler
// fails the claim is released so a redelivery can try again. A store error
// is logged and the event handled anyway.
func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	key := evt.EventType() + ":" + evt.EventID().String()
	fields := []zap.Field{
		zap.String("event_id", evt.EventID().String()),
		zap.String("event_type", evt.EventType()),
	}

	log := logger.WithLogger(ctx, h.logger)

	claimed, err := h.store.MarkProcessed(ctx, key, h.ttl)
	switch {
	case err != nil:
		log.Warn("Idempotency check failed, handling anyway", append(fields, zap.Error(err))...)
	case !claimed:
		h.duplicates.Add(1)
		log.Debug("Duplicate event skipped", fields...)
		return nil
	}

	if err := h.handler.Handle(ctx, evt); err != nil {
		h.failed.Add(1)
		if claimed {
			if ferr := h.store.Forget(ctx, key); ferr != nil {
				log.Warn("Failed to release idempotency key", append(fields, zap.Error(ferr))...)
			}
		}
		return err
	}

	h.processed.Add(1)
	return nil
}

// Stats returns the handler's counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		Processed:  h.processed.Load(),
		Duplicates: h.duplicates.Load(),
		Failed:     h.failed.Load(),
	}
}

// Unwrap returns the wrapped handler
func (h *IdempotentHandler) Unwrap() shared.EventHandler {
	return h.handler
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
