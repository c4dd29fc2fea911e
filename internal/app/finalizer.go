package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/ports/secondary"
)

// FinalizerConfig carries the externally configured finalization policy.
type FinalizerConfig struct {
	// TopicStatusPolicy is applied to topics created by the pipeline once
	// migration commits: leave-open, close, or archive.
	TopicStatusPolicy string

	// SystemActor authors the placeholder message left in the channel log.
	SystemActor string
}

// ChannelFinalizer flips channel, membership, and destination state once a
// migration has fully committed. Every sub-step is an idempotent absolute
// assignment, so a retried finalization converges to the same end state no
// matter how far a prior attempt got.
type ChannelFinalizer struct {
	channels    secondary.ChannelRepository
	messages    secondary.MessageRepository
	memberships secondary.MembershipRepository
	topics      secondary.TopicRepository
	cfg         FinalizerConfig
	logger      *zap.Logger
}

// NewChannelFinalizer creates a new ChannelFinalizer.
func NewChannelFinalizer(
	channels secondary.ChannelRepository,
	messages secondary.MessageRepository,
	memberships secondary.MembershipRepository,
	topics secondary.TopicRepository,
	cfg FinalizerConfig,
	logger *zap.Logger,
) *ChannelFinalizer {
	return &ChannelFinalizer{
		channels:    channels,
		messages:    messages,
		memberships: memberships,
		topics:      topics,
		cfg:         cfg,
		logger:      logger,
	}
}

// Finalize empties the channel, detaches its members, marks it archived,
// and applies the topic status policy to pipeline-created topics.
func (f *ChannelFinalizer) Finalize(ctx context.Context, record *secondary.ArchiveRecord) error {
	// The messages now live solely as posts.
	if err := f.messages.DeleteActive(ctx, record.ChannelID, record.TotalMessages); err != nil {
		return fmt.Errorf("failed to delete archived messages: %w", err)
	}

	if err := f.memberships.ResetFollowing(ctx, record.ChannelID); err != nil {
		return fmt.Errorf("failed to reset memberships: %w", err)
	}

	if err := f.channels.SetStatus(ctx, record.ChannelID, archive.ChannelArchived); err != nil {
		return fmt.Errorf("failed to archive channel: %w", err)
	}

	// Pre-existing destination topics are never touched.
	if record.TopicCreated {
		switch f.cfg.TopicStatusPolicy {
		case archive.PolicyClose:
			if err := f.topics.SetStatus(ctx, record.DestinationTopicID, archive.TopicClosed); err != nil {
				return fmt.Errorf("failed to close destination topic: %w", err)
			}
		case archive.PolicyArchive:
			if err := f.topics.SetStatus(ctx, record.DestinationTopicID, archive.TopicArchived); err != nil {
				return fmt.Errorf("failed to archive destination topic: %w", err)
			}
		}
	}

	f.leavePlaceholder(ctx, record)

	return nil
}

// leavePlaceholder writes a pointer to the first migrated post into the
// channel log, for any surviving UI that still reads channel history
// directly. Best-effort: failures are logged, never surfaced.
func (f *ChannelFinalizer) leavePlaceholder(ctx context.Context, record *secondary.ArchiveRecord) {
	post, err := f.topics.GetPostByBatchKey(ctx, archive.BatchKey(record.ID, 0))
	if err != nil || post == nil {
		// An empty channel produces no posts and gets no placeholder.
		if err != nil {
			f.logger.Warn("Failed to locate first migrated post",
				zap.String("archive_id", record.ID), zap.Error(err))
		}
		return
	}

	placeholder := &secondary.MessageRecord{
		ID:        record.ID + ":placeholder",
		ChannelID: record.ChannelID,
		Author:    f.cfg.SystemActor,
		Body: fmt.Sprintf("This channel was archived. The conversation continues in topic %s (post %s).",
			post.TopicID, post.ID),
		Kind: secondary.MessageKindPlaceholder,
	}

	if err := f.messages.Create(ctx, placeholder); err != nil {
		f.logger.Warn("Failed to leave placeholder message",
			zap.String("archive_id", record.ID), zap.Error(err))
	}
}
