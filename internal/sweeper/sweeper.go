// Package sweeper runs the periodic job that advances bookings past their
// time-based lifecycle boundaries: arrival-day check-in, no-show marking,
// and overdue check-out.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// sweepRunner is the slice of the booking service the sweeper needs.
type sweepRunner interface {
	RunSweep(ctx context.Context) (int, error)
}

// Sweeper ticks on a fixed interval and runs one sweep pass per tick.
// Passes do not overlap; a pass that outlives the interval simply delays
// the next tick's work.
type Sweeper struct {
	runner   sweepRunner
	interval time.Duration
	logger   *zap.Logger
}

// New creates a Sweeper.
func New(runner sweepRunner, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the sweep loop until ctx is cancelled. An initial pass runs
// immediately so a restarted service catches up without waiting a full
// interval.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("sweeper started", zap.Duration("interval", s.interval))

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	start := time.Now()
	swept, err := s.runner.RunSweep(ctx)
	if err != nil {
		s.logger.Error("sweep pass failed",
			zap.Int("swept", swept),
			zap.Error(err),
		)
		return
	}
	if swept > 0 {
		s.logger.Info("sweep pass completed",
			zap.Int("swept", swept),
			zap.Duration("took", time.Since(start)),
		)
	}
}
