package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/ports/primary"
	"github.com/example/archivist/internal/ports/secondary"
)

// Registrar creates archive records and hands them to the scheduler. It
// enforces the single-active-archive-per-channel invariant: registering a
// channel that already has a current archive returns that archive unchanged.
type Registrar struct {
	archives secondary.ArchiveRepository
	channels secondary.ChannelRepository
	messages secondary.MessageRepository
	topics   secondary.TopicRepository
	queue    secondary.JobQueue
	logger   *zap.Logger
}

// NewRegistrar creates a new Registrar with injected dependencies.
func NewRegistrar(
	archives secondary.ArchiveRepository,
	channels secondary.ChannelRepository,
	messages secondary.MessageRepository,
	topics secondary.TopicRepository,
	queue secondary.JobQueue,
	logger *zap.Logger,
) *Registrar {
	return &Registrar{
		archives: archives,
		channels: channels,
		messages: messages,
		topics:   topics,
		queue:    queue,
		logger:   logger,
	}
}

// Register creates the archive record, snapshots the message count, freezes
// the channel, and enqueues the job.
func (r *Registrar) Register(ctx context.Context, req primary.RegisterArchiveRequest) (*secondary.ArchiveRecord, error) {
	// Idempotency guard: one current archive per channel.
	existing, err := r.archives.FindCurrentByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing archive: %w", err)
	}
	if existing != nil {
		r.logger.Info("Archive already registered for channel",
			zap.String("channel_id", req.ChannelID),
			zap.String("archive_id", existing.ID),
			zap.String("state", existing.State))
		return existing, nil
	}

	guardCtx := archive.RegisterContext{
		ChannelID:       req.ChannelID,
		InitiatedBy:     req.InitiatedBy,
		ExistingTopicID: req.ExistingTopicID,
		TopicTitle:      req.TopicTitle,
	}

	if channel, err := r.channels.GetByID(ctx, req.ChannelID); err == nil {
		guardCtx.ChannelExists = true
		guardCtx.ChannelStatus = channel.Status
	}

	if req.ExistingTopicID != "" {
		if _, err := r.topics.GetByID(ctx, req.ExistingTopicID); err == nil {
			guardCtx.TopicExists = true
		}
	}

	if result := archive.CanRegisterArchive(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	// Snapshot the message count. Messages created afterward never belong
	// to this archive; the read_only flip below rejects them anyway.
	total, err := r.messages.CountActive(ctx, req.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to count channel messages: %w", err)
	}

	id, err := r.archives.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate archive ID: %w", err)
	}

	record := &secondary.ArchiveRecord{
		ID:              id,
		ChannelID:       req.ChannelID,
		InitiatedBy:     req.InitiatedBy,
		ExistingTopicID: req.ExistingTopicID,
		TopicTitle:      req.TopicTitle,
		TopicCategory:   req.TopicCategory,
		TopicTags:       strings.Join(req.TopicTags, ","),
		TotalMessages:   total,
		State:           archive.StatePending,
	}

	if err := r.archives.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	if err := r.channels.SetStatus(ctx, req.ChannelID, archive.ChannelReadOnly); err != nil {
		return nil, fmt.Errorf("failed to freeze channel: %w", err)
	}

	// A failed enqueue is not fatal: the record is persisted and the sweep
	// re-enqueues pending archives.
	if err := r.queue.Enqueue(ctx, secondary.Job{ArchiveID: id}); err != nil {
		r.logger.Warn("Failed to enqueue archive job; sweep will retry",
			zap.String("archive_id", id), zap.Error(err))
	}

	r.logger.Info("Archive registered",
		zap.String("archive_id", id),
		zap.String("channel_id", req.ChannelID),
		zap.Int("total_messages", total))

	return record, nil
}
