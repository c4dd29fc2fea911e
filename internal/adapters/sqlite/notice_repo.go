package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/archivist/internal/ports/secondary"
)

// NoticeRepository implements secondary.NoticeRepository with SQLite.
type NoticeRepository struct {
	db *sql.DB
}

// NewNoticeRepository creates a new SQLite notice repository.
func NewNoticeRepository(db *sql.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// Create persists a new notice.
func (r *NoticeRepository) Create(ctx context.Context, notice *secondary.NoticeRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notices (id, sender, recipient, subject, body, read) VALUES (?, ?, ?, ?, ?, 0)",
		notice.ID, notice.Sender, notice.Recipient, notice.Subject, notice.Body)
	if err != nil {
		return fmt.Errorf("failed to create notice: %w", err)
	}

	return nil
}

// ListForRecipient retrieves notices for a recipient, newest first.
func (r *NoticeRepository) ListForRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]*secondary.NoticeRecord, error) {
	query := "SELECT id, sender, recipient, subject, body, read, created_at FROM notices WHERE recipient = ?"
	if unreadOnly {
		query += " AND read = 0"
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	defer rows.Close()

	var notices []*secondary.NoticeRecord
	for rows.Next() {
		var (
			readInt   int
			createdAt time.Time
		)

		record := &secondary.NoticeRecord{}
		err := rows.Scan(&record.ID, &record.Sender, &record.Recipient,
			&record.Subject, &record.Body, &readInt, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notice: %w", err)
		}

		record.Read = readInt == 1
		record.CreatedAt = createdAt.Format(time.RFC3339)

		notices = append(notices, record)
	}

	return notices, rows.Err()
}

// MarkRead marks a notice as read.
func (r *NoticeRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE notices SET read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark notice as read: %w", err)
	}

	return requireRow(result, "notice", id)
}

// Ensure NoticeRepository implements the interface.
var _ secondary.NoticeRepository = (*NoticeRepository)(nil)
