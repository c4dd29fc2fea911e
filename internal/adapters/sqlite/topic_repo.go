package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/ports/secondary"
)

// TopicRepository implements secondary.TopicRepository with SQLite.
type TopicRepository struct {
	db *sql.DB
}

// NewTopicRepository creates a new SQLite topic repository.
func NewTopicRepository(db *sql.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// Create persists a new topic. An illegal title returns a terminal
// validation error with a human-readable message.
func (r *TopicRepository) Create(ctx context.Context, topic *secondary.TopicRecord) error {
	if err := archive.ValidateTitle(topic.Title); err != nil {
		return err
	}

	status := topic.Status
	if status == "" {
		status = archive.TopicOpen
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO topics (id, title, category, tags, author, status) VALUES (?, ?, ?, ?, ?, ?)",
		topic.ID, topic.Title, nullable(topic.Category), nullable(topic.Tags), topic.Author, status)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}

	return nil
}

// GetByID retrieves a topic by its ID.
func (r *TopicRepository) GetByID(ctx context.Context, id string) (*secondary.TopicRecord, error) {
	var (
		category, tags sql.NullString
		createdAt      time.Time
	)

	record := &secondary.TopicRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, category, tags, author, status, created_at FROM topics WHERE id = ?", id,
	).Scan(&record.ID, &record.Title, &category, &tags, &record.Author, &record.Status, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("topic %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	record.Category = category.String
	record.Tags = tags.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// SetStatus updates the topic status.
func (r *TopicRepository) SetStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE topics SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to set topic status: %w", err)
	}

	return requireRow(result, "topic", id)
}

// CountPosts returns the number of posts in a topic.
func (r *TopicRepository) CountPosts(ctx context.Context, topicID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posts WHERE topic_id = ?", topicID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

// GetPostByBatchKey retrieves the post created for a batch dedup key.
func (r *TopicRepository) GetPostByBatchKey(ctx context.Context, batchKey string) (*secondary.PostRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, topic_id, author, body, position, batch_key, created_at FROM posts WHERE batch_key = ?",
		batchKey)

	record, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by batch key: %w", err)
	}

	return record, nil
}

// ListPosts retrieves a topic's posts in append order.
func (r *TopicRepository) ListPosts(ctx context.Context, topicID string) ([]*secondary.PostRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, topic_id, author, body, position, batch_key, created_at FROM posts WHERE topic_id = ? ORDER BY position ASC",
		topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*secondary.PostRecord
	for rows.Next() {
		record, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, record)
	}

	return posts, rows.Err()
}

func scanPost(s scanner) (*secondary.PostRecord, error) {
	var (
		batchKey  sql.NullString
		createdAt time.Time
	)

	record := &secondary.PostRecord{}
	err := s.Scan(&record.ID, &record.TopicID, &record.Author, &record.Body,
		&record.Position, &batchKey, &createdAt)
	if err != nil {
		return nil, err
	}

	record.BatchKey = batchKey.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// Ensure TopicRepository implements the interface.
var _ secondary.TopicRepository = (*TopicRepository)(nil)
