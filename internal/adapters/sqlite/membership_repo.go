package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/archivist/internal/ports/secondary"
)

// MembershipRepository implements secondary.MembershipRepository with SQLite.
type MembershipRepository struct {
	db *sql.DB
}

// NewMembershipRepository creates a new SQLite membership repository.
func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

// ListFollowers retrieves memberships currently following the channel.
func (r *MembershipRepository) ListFollowers(ctx context.Context, channelID string) ([]*secondary.MembershipRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT channel_id, user_id, following, last_read_message_id FROM memberships WHERE channel_id = ? AND following = 1 ORDER BY user_id",
		channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	defer rows.Close()

	var memberships []*secondary.MembershipRecord
	for rows.Next() {
		var (
			followingInt int
			lastRead     sql.NullString
		)

		record := &secondary.MembershipRecord{}
		err := rows.Scan(&record.ChannelID, &record.UserID, &followingInt, &lastRead)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}

		record.Following = followingInt == 1
		record.LastReadMessageID = lastRead.String

		memberships = append(memberships, record)
	}

	return memberships, rows.Err()
}

// ResetFollowing sets following=false and clears the unread marker for every
// membership of the channel. Absolute assignment; a retried finalization
// re-applies the same end state.
func (r *MembershipRepository) ResetFollowing(ctx context.Context, channelID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE memberships SET following = 0, last_read_message_id = NULL WHERE channel_id = ?",
		channelID)
	if err != nil {
		return fmt.Errorf("failed to reset memberships: %w", err)
	}

	return nil
}

// Ensure MembershipRepository implements the interface.
var _ secondary.MembershipRepository = (*MembershipRepository)(nil)
