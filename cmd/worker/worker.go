package main

import (
	"context"
	"fmt"
	"time"

	"github.com/djnacci/backend/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepTimeout bounds a single orphan sweep run
const sweepTimeout = 10 * time.Minute

// OrphanSweeper defines the periodic cleanup of stored files no media item references
type OrphanSweeper interface {
	// Sweep removes unreferenced files older than the grace period
	Sweep(ctx context.Context) (services.SweepResult, error)
}

// Worker runs the periodic jobs of the worker process
type Worker struct {
	logger  *zap.Logger
	sweeper OrphanSweeper
	timeout time.Duration
}

// NewWorker creates a new worker instance
func NewWorker(logger *zap.Logger, sweeper OrphanSweeper) *Worker {
	return &Worker{
		logger:  logger,
		sweeper: sweeper,
		timeout: sweepTimeout,
	}
}

// SweepOrphans runs one orphan sweep and logs its outcome
func (w *Worker) SweepOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	result, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.logger.Error("Orphan sweep failed", zap.Error(err))
		return
	}

	w.logger.Info("Orphan sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("removed", result.Removed),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", time.Since(start)),
	)
}

// NewScheduler registers the periodic jobs of w on a cron scheduler.
// A sweep still running when the next tick fires is not started twice.
func NewScheduler(schedule string, w *Worker) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, w.SweepOrphans); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return c, nil
}
