package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ExpiredReservationReleaser deletes reservations whose expiry has passed
type ExpiredReservationReleaser interface {
	ReleaseExpired(ctx context.Context) (*inventoryapp.ReleaseStats, error)
}

// ReservationSweeperConfig holds configuration for the reservation sweeper
type ReservationSweeperConfig struct {
	// Enabled determines if the sweeper is active
	Enabled bool

	// Interval is the time between sweeps
	Interval time.Duration

	// Timeout bounds a single sweep
	Timeout time.Duration

	// RunOnStart sweeps immediately instead of waiting a full interval
	RunOnStart bool
}

// DefaultReservationSweeperConfig returns default configuration
func DefaultReservationSweeperConfig() ReservationSweeperConfig {
	return ReservationSweeperConfig{
		Enabled:    true,
		Interval:   5 * time.Minute,
		Timeout:    time.Minute,
		RunOnStart: true,
	}
}

// ReservationSweeperConfigFrom maps application config onto sweeper settings
func ReservationSweeperConfigFrom(cfg config.ReservationConfig) ReservationSweeperConfig {
	c := DefaultReservationSweeperConfig()
	c.Enabled = cfg.SweepEnabled
	if cfg.SweepInterval > 0 {
		c.Interval = cfg.SweepInterval
	}
	return c
}

// Validate checks the configuration
func (c ReservationSweeperConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// SweeperStats summarizes sweeps run since start
type SweeperStats struct {
	Runs      int64
	Failures  int64
	Released  int64
	LastRunAt time.Time
	LastError string
}

// ReservationSweeper periodically reclaims expired reservation rows.
// Availability ignores expired rows whether or not they have been swept.
type ReservationSweeper struct {
	releaser ExpiredReservationReleaser
	logger   *zap.Logger
	config   ReservationSweeperConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	sweeping  atomic.Bool

	statsMu sync.Mutex
	stats   SweeperStats
}

// NewReservationSweeper creates a new reservation sweeper
func NewReservationSweeper(
	releaser ExpiredReservationReleaser,
	logger *zap.Logger,
	config ReservationSweeperConfig,
) (*ReservationSweeper, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ReservationSweeper{
		releaser: releaser,
		logger:   logger.Named("reservation_sweeper"),
		config:   config,
	}, nil
}

// Start starts the sweep loop
func (s *ReservationSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Reservation sweeper is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Reservation sweeper started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop gracefully stops the sweeper, waiting for an in-flight sweep
func (s *ReservationSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reservation sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reservation sweeper stop timed out")
		return ctx.Err()
	}
}

func (s *ReservationSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.sweep(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Reservation sweep loop stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// RunOnce performs a single sweep outside the loop. It returns
// ErrSweepInProgress if a sweep is already running.
func (s *ReservationSweeper) RunOnce(ctx context.Context) (*inventoryapp.ReleaseStats, error) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.sweeping.Store(false)
	return s.execute(ctx)
}

func (s *ReservationSweeper) sweep(ctx context.Context) {
	if !s.sweeping.CompareAndSwap(false, true) {
		s.logger.Debug("Skipping sweep, previous sweep still running")
		return
	}
	defer s.sweeping.Store(false)
	_, _ = s.execute(ctx)
}

func (s *ReservationSweeper) execute(ctx context.Context) (*inventoryapp.ReleaseStats, error) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.releaser.ReleaseExpired(sweepCtx)
	duration := time.Since(startTime)

	s.statsMu.Lock()
	s.stats.Runs++
	s.stats.LastRunAt = startTime
	s.stats.LastError = ""
	if err != nil {
		s.stats.Failures++
		s.stats.LastError = err.Error()
	}
	if result != nil {
		s.stats.Released += result.Released
	}
	s.statsMu.Unlock()

	if err != nil {
		s.logger.Error("Reservation sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return result, err
	}

	if result.TotalExpired > 0 {
		s.logger.Info("Reservation sweep completed",
			zap.Duration("duration", duration),
			zap.Int("expired", result.TotalExpired),
			zap.Int64("released", result.Released),
		)
	}
	return result, nil
}

// Stats returns a snapshot of sweep counters
func (s *ReservationSweeper) Stats() SweeperStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// IsRunning reports whether the sweep loop is active
func (s *ReservationSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
