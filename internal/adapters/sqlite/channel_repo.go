package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/archivist/internal/ports/secondary"
)

// ChannelRepository implements secondary.ChannelRepository with SQLite.
type ChannelRepository struct {
	db *sql.DB
}

// NewChannelRepository creates a new SQLite channel repository.
func NewChannelRepository(db *sql.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// GetByID retrieves a channel by its ID.
func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*secondary.ChannelRecord, error) {
	var createdAt time.Time

	record := &secondary.ChannelRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, status, created_at FROM channels WHERE id = ?", id,
	).Scan(&record.ID, &record.Name, &record.Status, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("channel %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// SetStatus updates the channel status.
func (r *ChannelRepository) SetStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE channels SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to set channel status: %w", err)
	}

	return requireRow(result, "channel", id)
}

// Ensure ChannelRepository implements the interface.
var _ secondary.ChannelRepository = (*ChannelRepository)(nil)
