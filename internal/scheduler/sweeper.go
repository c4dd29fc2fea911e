// Package scheduler re-enqueues archives that stalled without a queued job:
// lost deliveries and crashed workers. Failed archives are not swept; a
// terminal failure would fail identically forever, so failed archives wait
// for an explicit rerun.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/ports/secondary"
)

// StaleLister is the slice of the archive repository the sweep needs.
type StaleLister interface {
	ListStale(ctx context.Context, states []string, updatedBefore time.Time) ([]*secondary.ArchiveRecord, error)
}

// Config bounds the sweep cadence.
type Config struct {
	// Interval is how often the sweep runs.
	Interval time.Duration

	// StaleAfter is how long an unfinished archive must sit untouched
	// before the sweep picks it up. Must comfortably exceed the worker's
	// retry delay or the sweep double-delivers jobs the worker still owns.
	StaleAfter time.Duration
}

type Sweeper struct {
	archives StaleLister
	queue    secondary.JobQueue
	cfg      Config
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewSweeper(archives StaleLister, queue secondary.JobQueue, cfg Config, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		archives: archives,
		queue:    queue,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start schedules the periodic sweep.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	spec := fmt.Sprintf("@every %s", s.cfg.Interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("Sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Sweep scheduled", zap.Duration("interval", s.cfg.Interval))
	return nil
}

// Stop halts the schedule. A sweep already running finishes.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		s.logger.Info("Sweeper stopped")
	}
}

// Sweep re-enqueues every unfinished archive not updated recently. The
// pipeline's execution lock and the batch-key dedup make a duplicate
// delivery harmless.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.StaleAfter)
	stale, err := s.archives.ListStale(ctx,
		[]string{archive.StatePending, archive.StateArchiving}, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list stale archives: %w", err)
	}

	for _, record := range stale {
		if err := s.queue.Enqueue(ctx, secondary.Job{ArchiveID: record.ID}); err != nil {
			return fmt.Errorf("failed to re-enqueue archive %s: %w", record.ID, err)
		}
		s.logger.Info("Re-enqueued stale archive",
			zap.String("archive_id", record.ID), zap.String("state", record.State))
	}

	return nil
}
