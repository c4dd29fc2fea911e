package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/archivist/internal/ports/secondary"
)

// TxRunner implements secondary.UnitOfWork with a SQLite transaction. One
// batch's post creation, reference repointing, and checkpoint advance share
// a single commit, so a batch is either fully applied and counted or not
// applied at all.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner creates a new TxRunner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// WithinTx runs fn inside a transaction, committing on nil and rolling back
// on error.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(tx secondary.BatchTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&batchTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to roll back after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// batchTx implements secondary.BatchTx over an open *sql.Tx.
type batchTx struct {
	tx *sql.Tx
}

// CreatePost appends a post after all currently existing posts of the topic.
func (b *batchTx) CreatePost(ctx context.Context, post *secondary.PostRecord) error {
	var position int
	err := b.tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) + 1 FROM posts WHERE topic_id = ?",
		post.TopicID,
	).Scan(&position)
	if err != nil {
		return fmt.Errorf("failed to compute post position: %w", err)
	}

	_, err = b.tx.ExecContext(ctx,
		"INSERT INTO posts (id, topic_id, author, body, position, batch_key) VALUES (?, ?, ?, ?, ?, ?)",
		post.ID, post.TopicID, post.Author, post.Body, position, nullable(post.BatchKey))
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	post.Position = position

	return nil
}

func (b *batchTx) RepointReactions(ctx context.Context, messageIDs []string, postID string) error {
	return b.repoint(ctx, "reactions", messageIDs, postID)
}

func (b *batchTx) RepointAttachments(ctx context.Context, messageIDs []string, postID string) error {
	return b.repoint(ctx, "attachments", messageIDs, postID)
}

func (b *batchTx) RepointRevisions(ctx context.Context, messageIDs []string, postID string) error {
	return b.repoint(ctx, "revisions", messageIDs, postID)
}

func (b *batchTx) RepointWebhookEvents(ctx context.Context, messageIDs []string, postID string) error {
	return b.repoint(ctx, "webhook_events", messageIDs, postID)
}

// repoint flips ownership of auxiliary records from their messages to the
// post. Row identity is preserved; only the parent changes. Records already
// migrated no longer match the WHERE clause, so re-running is a no-op.
func (b *batchTx) repoint(ctx context.Context, table string, messageIDs []string, postID string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(messageIDs)), ", ")
	args := []any{postID}
	for _, id := range messageIDs {
		args = append(args, id)
	}

	_, err := b.tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET post_id = ?, message_id = NULL WHERE message_id IN (%s)", table, placeholders),
		args...)
	if err != nil {
		return fmt.Errorf("failed to repoint %s: %w", table, err)
	}

	return nil
}

// AdvanceCursor increments the archive's archived-message checkpoint.
func (b *batchTx) AdvanceCursor(ctx context.Context, archiveID string, delta int) error {
	result, err := b.tx.ExecContext(ctx,
		`UPDATE archives
		 SET archived_messages = archived_messages + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND archived_messages + ? <= total_messages`,
		delta, archiveID, delta)
	if err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("cursor advance of %d rejected for archive %s", delta, archiveID)
	}

	return nil
}

// Ensure the interfaces are implemented.
var (
	_ secondary.UnitOfWork = (*TxRunner)(nil)
	_ secondary.BatchTx    = (*batchTx)(nil)
)
