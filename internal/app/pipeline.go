package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/ports/secondary"
)

// PipelineConfig carries the runtime parameters of the pipeline.
type PipelineConfig struct {
	// BatchSize is the number of messages aggregated into one post.
	BatchSize int

	// SystemActor authors pipeline-created topics and posts.
	SystemActor string
}

// Pipeline executes archives: it resolves the destination topic, migrates
// messages batch by batch, and finalizes the channel. Execute is safe to
// invoke repeatedly: the archived-message checkpoint doubles as a resume
// cursor, and every batch commits atomically.
type Pipeline struct {
	archives   secondary.ArchiveRepository
	messages   secondary.MessageRepository
	topics     secondary.TopicRepository
	uow        secondary.UnitOfWork
	lock       secondary.ExecutionLock
	migrator   *ReferenceMigrator
	finalizer  *ChannelFinalizer
	dispatcher *NotificationDispatcher
	cfg        PipelineConfig
	logger     *zap.Logger
}

// NewPipeline creates a new Pipeline with injected dependencies.
func NewPipeline(
	archives secondary.ArchiveRepository,
	messages secondary.MessageRepository,
	topics secondary.TopicRepository,
	uow secondary.UnitOfWork,
	lock secondary.ExecutionLock,
	migrator *ReferenceMigrator,
	finalizer *ChannelFinalizer,
	dispatcher *NotificationDispatcher,
	cfg PipelineConfig,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		archives:   archives,
		messages:   messages,
		topics:     topics,
		uow:        uow,
		lock:       lock,
		migrator:   migrator,
		finalizer:  finalizer,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Execute runs (or resumes) one archive. It returns nil on completion and
// on terminal failures (retrying identical input cannot succeed); any other
// error is retryable and the caller may redeliver the job.
func (p *Pipeline) Execute(ctx context.Context, archiveID string) error {
	// Single-writer discipline: two executions racing on the checkpoint
	// would corrupt it, so refuse to run without the per-archive lock.
	token, acquired, err := p.lock.Acquire(ctx, archiveID)
	if err != nil {
		return archive.Retryable(fmt.Errorf("failed to acquire execution lock: %w", err))
	}
	if !acquired {
		return archive.Retryable(fmt.Errorf("%w: %s", archive.ErrLocked, archiveID))
	}
	defer func() {
		if err := p.lock.Release(context.WithoutCancel(ctx), archiveID, token); err != nil {
			p.logger.Warn("Failed to release execution lock",
				zap.String("archive_id", archiveID), zap.Error(err))
		}
	}()

	record, err := p.archives.GetByID(ctx, archiveID)
	if err != nil {
		return archive.Retryable(err)
	}

	logger := p.logger.With(zap.String("archive_id", record.ID), zap.String("channel_id", record.ChannelID))

	if record.State == archive.StateComplete {
		logger.Info("Archive already complete; nothing to do")
		return nil
	}

	if result := archive.CanExecute(archive.ExecuteContext{
		ArchiveID:        record.ID,
		State:            record.State,
		ArchivedMessages: record.ArchivedMessages,
		TotalMessages:    record.TotalMessages,
	}); !result.Allowed {
		return archive.Retryable(result.Error())
	}

	if record.State != archive.StateArchiving {
		if err := p.archives.SetState(ctx, record.ID, archive.StateArchiving); err != nil {
			return archive.Retryable(err)
		}
		record.State = archive.StateArchiving
	}

	// Step A: resolve the destination topic.
	if record.DestinationTopicID == "" {
		if err := p.resolveDestination(ctx, record, logger); err != nil {
			if archive.IsTerminal(err) {
				// Bad input fails identically on every retry: record it,
				// notify, and swallow so the scheduler does not spin.
				p.failRun(ctx, record, err)
				logger.Warn("Destination resolution failed terminally", zap.Error(err))
				return nil
			}
			p.failRun(ctx, record, err)
			return archive.Retryable(err)
		}
	}

	// Step B: batched migration, resuming at the checkpoint.
	for record.ArchivedMessages < record.TotalMessages {
		if err := p.migrateBatch(ctx, record); err != nil {
			p.failRun(ctx, record, err)
			logger.Error("Batch migration failed",
				zap.Int("archived_messages", record.ArchivedMessages), zap.Error(err))
			return archive.Retryable(err)
		}
	}

	// Step C: finalization.
	if err := p.finalizer.Finalize(ctx, record); err != nil {
		p.failRun(ctx, record, err)
		return archive.Retryable(err)
	}

	if err := p.archives.MarkComplete(ctx, record.ID); err != nil {
		return archive.Retryable(err)
	}
	record.State = archive.StateComplete
	record.LastError = ""

	p.dispatcher.NotifySuccess(ctx, record)
	logger.Info("Archive complete", zap.Int("total_messages", record.TotalMessages))

	return nil
}

// resolveDestination binds or creates the destination topic and persists
// the binding before any message is migrated, so a crash here cannot cause
// duplicate topic creation on retry.
func (p *Pipeline) resolveDestination(ctx context.Context, record *secondary.ArchiveRecord, logger *zap.Logger) error {
	var (
		topicID string
		created bool
	)

	if record.ExistingTopicID != "" {
		// Existence was verified at registration; a topic gone since then
		// is bad input, not a transient fault.
		if _, err := p.topics.GetByID(ctx, record.ExistingTopicID); err != nil {
			return archive.Terminalf("destination topic %s is no longer available", record.ExistingTopicID)
		}
		topicID = record.ExistingTopicID
	} else {
		topic := &secondary.TopicRecord{
			ID:       uuid.NewString(),
			Title:    record.TopicTitle,
			Category: record.TopicCategory,
			Tags:     record.TopicTags,
			Author:   p.cfg.SystemActor,
		}
		if err := p.topics.Create(ctx, topic); err != nil {
			return err
		}
		topicID = topic.ID
		created = true
		logger.Info("Destination topic created", zap.String("topic_id", topicID))
	}

	if err := p.archives.SetDestination(ctx, record.ID, topicID, created); err != nil {
		return fmt.Errorf("failed to persist destination binding: %w", err)
	}
	record.DestinationTopicID = topicID
	record.TopicCreated = created

	return nil
}

// migrateBatch migrates the next batch of messages: one composed post, the
// reference repoints, and the checkpoint advance, all in one commit.
func (p *Pipeline) migrateBatch(ctx context.Context, record *secondary.ArchiveRecord) error {
	size := p.cfg.BatchSize
	if remaining := record.TotalMessages - record.ArchivedMessages; size > remaining {
		size = remaining
	}

	messages, err := p.messages.ListActive(ctx, record.ChannelID, record.ArchivedMessages, size)
	if err != nil {
		return fmt.Errorf("failed to fetch batch: %w", err)
	}
	if len(messages) == 0 {
		return fmt.Errorf("message log ended %d short of the registered count", record.TotalMessages-record.ArchivedMessages)
	}

	reactions := make(map[string][]secondary.ReactionCount)
	messageIDs := make([]string, len(messages))
	for i, msg := range messages {
		messageIDs[i] = msg.ID
		counts, err := p.messages.ReactionCounts(ctx, msg.ID)
		if err != nil {
			return fmt.Errorf("failed to summarize reactions: %w", err)
		}
		if len(counts) > 0 {
			reactions[msg.ID] = counts
		}
	}

	post := &secondary.PostRecord{
		ID:       uuid.NewString(),
		TopicID:  record.DestinationTopicID,
		Author:   p.cfg.SystemActor,
		Body:     ComposePostBody(messages, reactions),
		BatchKey: archive.BatchKey(record.ID, archive.BatchIndex(record.ArchivedMessages, p.cfg.BatchSize)),
	}

	err = p.uow.WithinTx(ctx, func(tx secondary.BatchTx) error {
		if err := tx.CreatePost(ctx, post); err != nil {
			return err
		}
		if err := p.migrator.Migrate(ctx, tx, messageIDs, post.ID); err != nil {
			return err
		}
		return tx.AdvanceCursor(ctx, record.ID, len(messages))
	})
	if err != nil {
		return err
	}

	record.ArchivedMessages += len(messages)

	return nil
}

// failRun records the failure and notifies the initiating actor. The
// checkpoint stays at the last fully committed batch.
func (p *Pipeline) failRun(ctx context.Context, record *secondary.ArchiveRecord, cause error) {
	if err := p.archives.MarkFailed(ctx, record.ID, cause.Error()); err != nil {
		p.logger.Error("Failed to record archive failure",
			zap.String("archive_id", record.ID), zap.Error(err))
	}
	record.State = archive.StateFailed
	record.LastError = cause.Error()

	p.dispatcher.NotifyFailure(ctx, record, cause.Error())
}
