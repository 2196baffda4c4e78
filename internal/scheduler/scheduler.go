// Package scheduler triggers periodic batch checks.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler runs a task at a fixed interval until the context is cancelled.
type Scheduler struct {
	interval time.Duration
	task     func(context.Context) error
	logger   *slog.Logger
}

// New creates a scheduler for the given task.
func New(interval time.Duration, task func(context.Context) error, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		task:     task,
		logger:   logger,
	}
}

// Run executes the task immediately, then on every tick. It returns when the
// context is cancelled. Task errors are logged; the schedule keeps going.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.task(ctx); err != nil {
		s.logger.Error("scheduled check failed", "error", err)
	}
}
