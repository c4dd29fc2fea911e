// Package worker consumes archive jobs from the queue and drives the
// pipeline, requeueing retryable failures with an attempt cap.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/ports/secondary"
)

// Executor runs one archive end to end. Satisfied by the archive service;
// an interface so tests can fail runs on demand.
type Executor interface {
	Execute(ctx context.Context, archiveID string) error
}

// Config bounds the retry behavior.
type Config struct {
	// MaxAttempts caps deliveries per job, first attempt included.
	MaxAttempts int

	// RetryDelay is slept before a failed job is requeued.
	RetryDelay time.Duration
}

type Worker struct {
	queue    secondary.JobQueue
	executor Executor
	cfg      Config
	logger   *zap.Logger
}

func NewWorker(queue secondary.JobQueue, executor Executor, cfg Config, logger *zap.Logger) *Worker {
	return &Worker{
		queue:    queue,
		executor: executor,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start runs the worker loop until the context is canceled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started. Waiting for jobs...")

	for {
		// Blocking pop from the queue.
		job, err := w.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Worker shutting down")
				return
			}
			w.logger.Error("Queue error", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		w.processJob(ctx, job)
	}
}

func (w *Worker) processJob(ctx context.Context, job *secondary.Job) {
	logger := w.logger.With(
		zap.String("archive_id", job.ArchiveID),
		zap.Int("attempt", job.Attempts+1))
	logger.Info("Processing archive job")

	err := w.executor.Execute(ctx, job.ArchiveID)
	if err == nil {
		logger.Info("Archive job done")
		return
	}

	// Only retryable failures go back on the queue. Terminal failures are
	// absorbed by the pipeline itself and reported to the initiator.
	if !archive.IsRetryable(err) {
		logger.Error("Archive job failed", zap.Error(err))
		return
	}

	attempts := job.Attempts + 1
	if attempts >= w.cfg.MaxAttempts {
		logger.Error("Archive job exhausted its attempts; rerun it manually",
			zap.Int("max_attempts", w.cfg.MaxAttempts), zap.Error(err))
		return
	}

	logger.Warn("Archive job failed; requeueing", zap.Error(err))
	time.Sleep(w.cfg.RetryDelay)

	requeue := secondary.Job{ArchiveID: job.ArchiveID, Attempts: attempts}
	if err := w.queue.Enqueue(ctx, requeue); err != nil {
		logger.Error("Failed to requeue archive job", zap.Error(err))
	}
}
