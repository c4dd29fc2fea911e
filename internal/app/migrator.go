package app

import (
	"context"
	"fmt"

	"github.com/example/archivist/internal/ports/secondary"
)

// ReferenceMigrator re-points auxiliary records (reactions, attachments,
// edit revisions, webhook events) from migrated messages to their
// destination post. Records keep their identity; only the owning reference
// changes. Each repoint is an absolute assignment scoped to the batch's
// message IDs, so re-running over already-migrated records is a no-op.
type ReferenceMigrator struct{}

// NewReferenceMigrator creates a new ReferenceMigrator.
func NewReferenceMigrator() *ReferenceMigrator {
	return &ReferenceMigrator{}
}

// Migrate re-points every auxiliary record attached to the given messages.
// It runs inside the batch transaction so the repoints commit together with
// the post and the checkpoint advance.
func (m *ReferenceMigrator) Migrate(ctx context.Context, tx secondary.BatchTx, messageIDs []string, postID string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	steps := []struct {
		name string
		fn   func(context.Context, []string, string) error
	}{
		{"reactions", tx.RepointReactions},
		{"attachments", tx.RepointAttachments},
		{"revisions", tx.RepointRevisions},
		{"webhook events", tx.RepointWebhookEvents},
	}

	for _, step := range steps {
		if err := step.fn(ctx, messageIDs, postID); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", step.name, err)
		}
	}

	return nil
}
