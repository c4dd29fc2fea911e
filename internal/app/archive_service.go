package app

import (
	"context"
	"fmt"

	"github.com/example/archivist/internal/ports/primary"
	"github.com/example/archivist/internal/ports/secondary"
)

// ArchiveServiceImpl implements the ArchiveService interface by delegating
// to the registrar and the pipeline.
type ArchiveServiceImpl struct {
	registrar *Registrar
	pipeline  *Pipeline
	archives  secondary.ArchiveRepository
	notices   secondary.NoticeRepository
}

// NewArchiveService creates a new ArchiveService with injected dependencies.
func NewArchiveService(
	registrar *Registrar,
	pipeline *Pipeline,
	archives secondary.ArchiveRepository,
	notices secondary.NoticeRepository,
) *ArchiveServiceImpl {
	return &ArchiveServiceImpl{
		registrar: registrar,
		pipeline:  pipeline,
		archives:  archives,
		notices:   notices,
	}
}

// Register creates an archive record for a channel.
func (s *ArchiveServiceImpl) Register(ctx context.Context, req primary.RegisterArchiveRequest) (*primary.Archive, error) {
	record, err := s.registrar.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return recordToArchive(record), nil
}

// Execute runs (or resumes) the archive pipeline.
func (s *ArchiveServiceImpl) Execute(ctx context.Context, archiveID string) error {
	return s.pipeline.Execute(ctx, archiveID)
}

// GetArchive retrieves an archive by ID.
func (s *ArchiveServiceImpl) GetArchive(ctx context.Context, archiveID string) (*primary.Archive, error) {
	record, err := s.archives.GetByID(ctx, archiveID)
	if err != nil {
		return nil, err
	}
	return recordToArchive(record), nil
}

// ListArchives lists archives, newest first.
func (s *ArchiveServiceImpl) ListArchives(ctx context.Context, limit int) ([]*primary.Archive, error) {
	records, err := s.archives.List(ctx, secondary.ArchiveFilters{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	archives := make([]*primary.Archive, len(records))
	for i, r := range records {
		archives[i] = recordToArchive(r)
	}
	return archives, nil
}

// ListNotices lists the private notices sent to a recipient.
func (s *ArchiveServiceImpl) ListNotices(ctx context.Context, recipient string) ([]*primary.Notice, error) {
	records, err := s.notices.ListForRecipient(ctx, recipient, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}

	notices := make([]*primary.Notice, len(records))
	for i, r := range records {
		notices[i] = &primary.Notice{
			ID:        r.ID,
			Sender:    r.Sender,
			Recipient: r.Recipient,
			Subject:   r.Subject,
			Body:      r.Body,
			Read:      r.Read,
			CreatedAt: r.CreatedAt,
		}
	}
	return notices, nil
}

func recordToArchive(r *secondary.ArchiveRecord) *primary.Archive {
	return &primary.Archive{
		ID:                 r.ID,
		ChannelID:          r.ChannelID,
		InitiatedBy:        r.InitiatedBy,
		DestinationTopicID: r.DestinationTopicID,
		TopicCreated:       r.TopicCreated,
		TotalMessages:      r.TotalMessages,
		ArchivedMessages:   r.ArchivedMessages,
		LastError:          r.LastError,
		State:              r.State,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// Ensure ArchiveServiceImpl implements the interface.
var _ primary.ArchiveService = (*ArchiveServiceImpl)(nil)
