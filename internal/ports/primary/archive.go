// Package primary defines the primary ports (driving adapters) for the
// application: the interfaces through which the outside world invokes it.
package primary

import "context"

// ArchiveService defines the primary port for channel archive operations.
type ArchiveService interface {
	// Register creates an archive record for a channel, freezes the channel,
	// and hands the job to the scheduler. Registering a channel that already
	// has a current archive returns that archive unchanged.
	Register(ctx context.Context, req RegisterArchiveRequest) (*Archive, error)

	// Execute runs (or resumes) the archive pipeline for an archive ID.
	// Safe to invoke repeatedly; completed archives are a no-op.
	Execute(ctx context.Context, archiveID string) error

	// GetArchive retrieves an archive by ID.
	GetArchive(ctx context.Context, archiveID string) (*Archive, error)

	// ListArchives lists archives, newest first.
	ListArchives(ctx context.Context, limit int) ([]*Archive, error)

	// ListNotices lists the private notices sent to a recipient.
	ListNotices(ctx context.Context, recipient string) ([]*Notice, error)
}

// RegisterArchiveRequest contains parameters for registering an archive.
// Exactly one of ExistingTopicID or TopicTitle must be set.
type RegisterArchiveRequest struct {
	ChannelID       string
	InitiatedBy     string
	ExistingTopicID string
	TopicTitle      string
	TopicCategory   string
	TopicTags       []string
}

// Archive represents an archive attempt at the port boundary.
type Archive struct {
	ID                 string
	ChannelID          string
	InitiatedBy        string
	DestinationTopicID string
	TopicCreated       bool
	TotalMessages      int
	ArchivedMessages   int
	LastError          string
	State              string
	CreatedAt          string
	UpdatedAt          string
}

// Notice represents a private notice at the port boundary.
type Notice struct {
	ID        string
	Sender    string
	Recipient string
	Subject   string
	Body      string
	Read      bool
	CreatedAt string
}
