// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/archivist/internal/ports/secondary"
)

const archiveColumns = `id, channel_id, initiated_by, existing_topic_id, topic_title,
	topic_category, topic_tags, destination_topic_id, topic_created,
	total_messages, archived_messages, last_error, state, created_at, updated_at`

// ArchiveRepository implements secondary.ArchiveRepository with SQLite.
type ArchiveRepository struct {
	db *sql.DB
}

// NewArchiveRepository creates a new SQLite archive repository.
func NewArchiveRepository(db *sql.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Create persists a new archive record.
func (r *ArchiveRepository) Create(ctx context.Context, record *secondary.ArchiveRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO archives (id, channel_id, initiated_by, existing_topic_id, topic_title,
			topic_category, topic_tags, destination_topic_id, topic_created,
			total_messages, archived_messages, last_error, state)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ChannelID, record.InitiatedBy,
		nullable(record.ExistingTopicID), nullable(record.TopicTitle),
		nullable(record.TopicCategory), nullable(record.TopicTags),
		nullable(record.DestinationTopicID), boolToInt(record.TopicCreated),
		record.TotalMessages, record.ArchivedMessages,
		nullable(record.LastError), record.State,
	)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	return nil
}

// GetByID retrieves an archive record by its ID.
func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*secondary.ArchiveRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+archiveColumns+" FROM archives WHERE id = ?", id)

	record, err := scanArchive(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("archive %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get archive: %w", err)
	}

	return record, nil
}

// FindCurrentByChannel returns the newest archive for the channel, in any
// state. Every state blocks a new registration (non-terminal ones because
// the work is still pending, complete because the channel is already
// archived), so the caller only needs the newest record.
func (r *ArchiveRepository) FindCurrentByChannel(ctx context.Context, channelID string) (*secondary.ArchiveRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+archiveColumns+" FROM archives WHERE channel_id = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		channelID)

	record, err := scanArchive(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find archive for channel: %w", err)
	}

	return record, nil
}

// List retrieves archive records, newest first.
func (r *ArchiveRepository) List(ctx context.Context, filters secondary.ArchiveFilters) ([]*secondary.ArchiveRecord, error) {
	query := "SELECT " + archiveColumns + " FROM archives WHERE 1=1"
	args := []any{}

	if filters.ChannelID != "" {
		query += " AND channel_id = ?"
		args = append(args, filters.ChannelID)
	}
	if filters.State != "" {
		query += " AND state = ?"
		args = append(args, filters.State)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}
	defer rows.Close()

	return collectArchives(rows)
}

// ListStale retrieves archives in any of the given states whose last update
// is older than the cutoff.
func (r *ArchiveRepository) ListStale(ctx context.Context, states []string, updatedBefore time.Time) ([]*secondary.ArchiveRecord, error) {
	if len(states) == 0 {
		return nil, nil
	}

	query := "SELECT " + archiveColumns + " FROM archives WHERE updated_at < ? AND state IN ("
	args := []any{updatedBefore.UTC()}
	for i, s := range states {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, s)
	}
	query += ") ORDER BY updated_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale archives: %w", err)
	}
	defer rows.Close()

	return collectArchives(rows)
}

// SetState updates the archive state.
func (r *ArchiveRepository) SetState(ctx context.Context, id, state string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE archives SET state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		state, id)
	if err != nil {
		return fmt.Errorf("failed to set archive state: %w", err)
	}

	return requireRow(result, "archive", id)
}

// SetDestination binds the destination topic.
func (r *ArchiveRepository) SetDestination(ctx context.Context, id, topicID string, created bool) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE archives SET destination_topic_id = ?, topic_created = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		topicID, boolToInt(created), id)
	if err != nil {
		return fmt.Errorf("failed to set archive destination: %w", err)
	}

	return requireRow(result, "archive", id)
}

// MarkFailed sets state to failed and records the error message.
func (r *ArchiveRepository) MarkFailed(ctx context.Context, id, reason string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE archives SET state = ?, last_error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		"failed", reason, id)
	if err != nil {
		return fmt.Errorf("failed to mark archive failed: %w", err)
	}

	return requireRow(result, "archive", id)
}

// MarkComplete sets state to complete and clears the error message.
func (r *ArchiveRepository) MarkComplete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE archives SET state = ?, last_error = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		"complete", id)
	if err != nil {
		return fmt.Errorf("failed to mark archive complete: %w", err)
	}

	return requireRow(result, "archive", id)
}

// GetNextID returns the next available archive ID.
func (r *ArchiveRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(REPLACE(id, 'ARC-', '') AS INTEGER)), 0) FROM archives",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next archive ID: %w", err)
	}

	return fmt.Sprintf("ARC-%03d", maxID+1), nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanArchive(s scanner) (*secondary.ArchiveRecord, error) {
	var (
		existingTopicID, topicTitle, topicCategory sql.NullString
		topicTags, destinationTopicID, lastError   sql.NullString
		topicCreated                               int
		createdAt, updatedAt                       time.Time
	)

	record := &secondary.ArchiveRecord{}
	err := s.Scan(&record.ID, &record.ChannelID, &record.InitiatedBy,
		&existingTopicID, &topicTitle, &topicCategory, &topicTags,
		&destinationTopicID, &topicCreated,
		&record.TotalMessages, &record.ArchivedMessages,
		&lastError, &record.State, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	record.ExistingTopicID = existingTopicID.String
	record.TopicTitle = topicTitle.String
	record.TopicCategory = topicCategory.String
	record.TopicTags = topicTags.String
	record.DestinationTopicID = destinationTopicID.String
	record.LastError = lastError.String
	record.TopicCreated = topicCreated == 1
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	return record, nil
}

func collectArchives(rows *sql.Rows) ([]*secondary.ArchiveRecord, error) {
	var records []*secondary.ArchiveRecord
	for rows.Next() {
		record, err := scanArchive(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archive: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(result sql.Result, entity, id string) error {
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s not found", entity, id)
	}
	return nil
}

// Ensure ArchiveRepository implements the interface.
var _ secondary.ArchiveRepository = (*ArchiveRepository)(nil)
