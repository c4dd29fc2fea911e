// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import (
	"context"
	"time"
)

// ArchiveRepository defines the secondary port for archive record persistence.
type ArchiveRepository interface {
	// Create persists a new archive record.
	Create(ctx context.Context, record *ArchiveRecord) error

	// GetByID retrieves an archive record by its ID.
	GetByID(ctx context.Context, id string) (*ArchiveRecord, error)

	// FindCurrentByChannel returns the archive that blocks a new registration
	// for the channel: the newest record in a non-terminal state or complete.
	// Returns (nil, nil) when the channel has no blocking archive.
	FindCurrentByChannel(ctx context.Context, channelID string) (*ArchiveRecord, error)

	// List retrieves archive records, newest first.
	List(ctx context.Context, filters ArchiveFilters) ([]*ArchiveRecord, error)

	// ListStale retrieves archives in any of the given states whose last
	// update is older than the cutoff.
	ListStale(ctx context.Context, states []string, updatedBefore time.Time) ([]*ArchiveRecord, error)

	// SetState updates the archive state.
	SetState(ctx context.Context, id, state string) error

	// SetDestination binds the destination topic. Once set it is never
	// changed again by the same archive.
	SetDestination(ctx context.Context, id, topicID string, created bool) error

	// MarkFailed sets state to failed and records the error message.
	MarkFailed(ctx context.Context, id, reason string) error

	// MarkComplete sets state to complete and clears the error message.
	MarkComplete(ctx context.Context, id string) error

	// GetNextID returns the next available archive ID.
	GetNextID(ctx context.Context) (string, error)
}

// ArchiveRecord represents an archive attempt as stored in persistence.
type ArchiveRecord struct {
	ID                 string
	ChannelID          string
	InitiatedBy        string
	ExistingTopicID    string // destination param: bind to this topic
	TopicTitle         string // destination params: create a new topic
	TopicCategory      string
	TopicTags          string // comma-separated
	DestinationTopicID string // empty until resolved
	TopicCreated       bool   // destination topic was created by this archive
	TotalMessages      int    // snapshot at registration, immutable
	ArchivedMessages   int    // resume cursor, advances in whole batches
	LastError          string
	State              string
	CreatedAt          string
	UpdatedAt          string
}

// ArchiveFilters contains filter options for querying archives.
type ArchiveFilters struct {
	ChannelID string
	State     string
	Limit     int
}

// ChannelRepository defines the secondary port for channel persistence.
type ChannelRepository interface {
	// GetByID retrieves a channel by its ID.
	GetByID(ctx context.Context, id string) (*ChannelRecord, error)

	// SetStatus updates the channel status.
	SetStatus(ctx context.Context, id, status string) error
}

// ChannelRecord represents a channel as stored in persistence.
type ChannelRecord struct {
	ID        string
	Name      string
	Status    string
	CreatedAt string
}

// Message kinds. Placeholder messages are pipeline-generated pointers left
// behind after finalization and are excluded from counts and enumeration.
const (
	MessageKindUser        = "user"
	MessageKindPlaceholder = "placeholder"
)

// MessageRepository defines the secondary port for channel message persistence.
type MessageRepository interface {
	// Create persists a new message. Placeholder messages use deterministic
	// IDs and creation is a no-op if the ID already exists.
	Create(ctx context.Context, message *MessageRecord) error

	// CountActive returns the number of non-deleted user messages in a channel.
	CountActive(ctx context.Context, channelID string) (int, error)

	// ListActive retrieves non-deleted user messages in the channel's
	// deterministic total order (creation time, then ID), skipping the first
	// offset messages. A limit <= 0 retrieves all remaining messages.
	ListActive(ctx context.Context, channelID string, offset, limit int) ([]*MessageRecord, error)

	// DeleteActive permanently deletes the first limit non-deleted user
	// messages of the channel in total order.
	DeleteActive(ctx context.Context, channelID string, limit int) error

	// ReactionCounts summarizes reactions still attached to a message as
	// emoji/count pairs, ordered by emoji.
	ReactionCounts(ctx context.Context, messageID string) ([]ReactionCount, error)
}

// MessageRecord represents a channel message as stored in persistence.
type MessageRecord struct {
	ID        string
	ChannelID string
	Author    string
	Body      string
	Kind      string
	Deleted   bool
	CreatedAt string
}

// ReactionCount summarizes one emoji's reactions on a message.
type ReactionCount struct {
	Emoji string
	Count int
}

// TopicRepository defines the secondary port for destination topic persistence.
type TopicRepository interface {
	// Create persists a new topic. Invalid input (e.g. an illegal title)
	// returns a terminal validation error with a human-readable message.
	Create(ctx context.Context, topic *TopicRecord) error

	// GetByID retrieves a topic by its ID.
	GetByID(ctx context.Context, id string) (*TopicRecord, error)

	// SetStatus updates the topic status.
	SetStatus(ctx context.Context, id, status string) error

	// CountPosts returns the number of posts in a topic.
	CountPosts(ctx context.Context, topicID string) (int, error)

	// GetPostByBatchKey retrieves the post created for a batch dedup key.
	// Returns (nil, nil) when no such post exists.
	GetPostByBatchKey(ctx context.Context, batchKey string) (*PostRecord, error)

	// ListPosts retrieves a topic's posts in append order.
	ListPosts(ctx context.Context, topicID string) ([]*PostRecord, error)
}

// TopicRecord represents a destination topic as stored in persistence.
type TopicRecord struct {
	ID        string
	Title     string
	Category  string
	Tags      string // comma-separated
	Author    string
	Status    string
	CreatedAt string
}

// PostRecord represents a destination post as stored in persistence.
// Position is assigned at insert time so posts always append after all
// currently existing posts in the topic.
type PostRecord struct {
	ID        string
	TopicID   string
	Author    string
	Body      string
	Position  int
	BatchKey  string // "<archive_id>:<batch_index>", unique; empty for organic posts
	CreatedAt string
}

// MembershipRepository defines the secondary port for channel membership
// persistence.
type MembershipRepository interface {
	// ListFollowers retrieves memberships currently following the channel.
	ListFollowers(ctx context.Context, channelID string) ([]*MembershipRecord, error)

	// ResetFollowing sets following=false and clears the unread marker for
	// every membership of the channel. Absolute assignment; safe to re-run.
	ResetFollowing(ctx context.Context, channelID string) error
}

// MembershipRecord represents a per-user channel membership.
type MembershipRecord struct {
	ChannelID         string
	UserID            string
	Following         bool
	LastReadMessageID string
}

// NoticeRepository defines the secondary port for private notices sent to
// initiating actors.
type NoticeRepository interface {
	// Create persists a new notice.
	Create(ctx context.Context, notice *NoticeRecord) error

	// ListForRecipient retrieves notices for a recipient, newest first,
	// optionally filtering to unread only.
	ListForRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]*NoticeRecord, error)

	// MarkRead marks a notice as read.
	MarkRead(ctx context.Context, id string) error
}

// NoticeRecord represents a private notice as stored in persistence.
type NoticeRecord struct {
	ID        string
	Sender    string
	Recipient string
	Subject   string
	Body      string
	Read      bool
	CreatedAt string
}
