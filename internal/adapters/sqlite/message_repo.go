package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/archivist/internal/ports/secondary"
)

// MessageRepository implements secondary.MessageRepository with SQLite.
//
// The deterministic total order of a channel's log is (created_at, id);
// every enumeration and deletion here uses it, so skip/offset semantics are
// stable across invocations as long as no rows are inserted before the
// cursor, which the read_only channel status guarantees during a migration.
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new SQLite message repository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create persists a new message. Placeholder messages use INSERT OR IGNORE
// with a deterministic ID, so a retried finalization cannot duplicate them.
func (r *MessageRepository) Create(ctx context.Context, message *secondary.MessageRecord) error {
	kind := message.Kind
	if kind == "" {
		kind = secondary.MessageKindUser
	}

	query := "INSERT INTO messages (id, channel_id, author, body, kind) VALUES (?, ?, ?, ?, ?)"
	if kind == secondary.MessageKindPlaceholder {
		query = "INSERT OR IGNORE INTO messages (id, channel_id, author, body, kind) VALUES (?, ?, ?, ?, ?)"
	}

	_, err := r.db.ExecContext(ctx, query,
		message.ID, message.ChannelID, message.Author, message.Body, kind)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// CountActive returns the number of non-deleted user messages in a channel.
func (r *MessageRepository) CountActive(ctx context.Context, channelID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE channel_id = ? AND deleted = 0 AND kind = 'user'",
		channelID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}

	return count, nil
}

// ListActive retrieves non-deleted user messages in total order, skipping
// the first offset. A limit <= 0 retrieves all remaining messages.
func (r *MessageRepository) ListActive(ctx context.Context, channelID string, offset, limit int) ([]*secondary.MessageRecord, error) {
	if limit <= 0 {
		limit = -1 // sqlite: LIMIT -1 means no limit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, channel_id, author, body, kind, deleted, created_at
		 FROM messages
		 WHERE channel_id = ? AND deleted = 0 AND kind = 'user'
		 ORDER BY created_at ASC, id ASC
		 LIMIT ? OFFSET ?`,
		channelID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*secondary.MessageRecord
	for rows.Next() {
		var (
			deletedInt int
			createdAt  time.Time
		)

		record := &secondary.MessageRecord{}
		err := rows.Scan(&record.ID, &record.ChannelID, &record.Author,
			&record.Body, &record.Kind, &deletedInt, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		record.Deleted = deletedInt == 1
		record.CreatedAt = createdAt.Format(time.RFC3339)

		messages = append(messages, record)
	}

	return messages, rows.Err()
}

// DeleteActive permanently deletes the first limit non-deleted user messages
// of the channel in total order.
func (r *MessageRepository) DeleteActive(ctx context.Context, channelID string, limit int) error {
	if limit <= 0 {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id IN (
			SELECT id FROM messages
			WHERE channel_id = ? AND deleted = 0 AND kind = 'user'
			ORDER BY created_at ASC, id ASC
			LIMIT ?
		)`,
		channelID, limit)
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return nil
}

// ReactionCounts summarizes reactions still attached to a message.
func (r *MessageRepository) ReactionCounts(ctx context.Context, messageID string) ([]secondary.ReactionCount, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT emoji, COUNT(*) FROM reactions WHERE message_id = ? GROUP BY emoji ORDER BY emoji",
		messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reactions: %w", err)
	}
	defer rows.Close()

	var counts []secondary.ReactionCount
	for rows.Next() {
		var rc secondary.ReactionCount
		if err := rows.Scan(&rc.Emoji, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan reaction count: %w", err)
		}
		counts = append(counts, rc)
	}

	return counts, rows.Err()
}

// Ensure MessageRepository implements the interface.
var _ secondary.MessageRepository = (*MessageRepository)(nil)
