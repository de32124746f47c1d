package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Syncer defines the interface for one full sync cycle.
type Syncer interface {
	RunCycle(ctx context.Context) error
}

type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

// Start runs one cycle immediately, then one per interval until the context is
// cancelled. Cycles are assumed non-overlapping; a cycle failure is logged and
// the next tick retries from the unadvanced watermark.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if err := s.syncer.RunCycle(ctx); err != nil {
		s.logger.Error("sync cycle failed", "error", err)
	}
}
