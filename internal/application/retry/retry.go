// Package retry re-runs a whole unit of work when the database reports a
// transient conflict (serialization failure, deadlock, busy database or an
// optimistic version mismatch).
package retry

import (
	"context"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"go.uber.org/zap"
)

// Policy bounds the retries of one operation
type Policy struct {
	// MaxRetries is the number of additional attempts after the first
	MaxRetries int
	// Backoff is multiplied by the attempt number before each retry
	Backoff time.Duration
}

// DefaultPolicy returns the policy used when none is configured
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		Backoff:    50 * time.Millisecond,
	}
}

// Do runs fn and re-runs it while it fails with a retryable error.
// Non-retryable errors and the last retryable error are returned unchanged.
func Do(ctx context.Context, policy Policy, logger *zap.Logger, operation string, fn func(ctx context.Context) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil || !shared.IsRetryable(err) || attempt > policy.MaxRetries {
			return err
		}

		delay := policy.Backoff * time.Duration(attempt)
		logger.Warn("Retrying after transient conflict",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
