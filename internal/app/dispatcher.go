package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/archivist/internal/ports/secondary"
)

// NotificationDispatcher sends the terminal private notice to the actor who
// initiated an archive. Delivery is best-effort: a notice that cannot be
// stored is logged and dropped rather than failing the run it reports on.
type NotificationDispatcher struct {
	notices secondary.NoticeRepository
	sender  string
	logger  *zap.Logger
}

// NewNotificationDispatcher creates a new NotificationDispatcher. sender is
// the system actor the notices appear from.
func NewNotificationDispatcher(notices secondary.NoticeRepository, sender string, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		notices: notices,
		sender:  sender,
		logger:  logger,
	}
}

// NotifySuccess tells the initiating actor the archive completed, linking
// the destination topic.
func (d *NotificationDispatcher) NotifySuccess(ctx context.Context, record *secondary.ArchiveRecord) {
	subject := fmt.Sprintf("Channel %s archived", record.ChannelID)
	body := fmt.Sprintf(
		"Archiving of channel %s is complete. All %d messages are now available in topic %s.",
		record.ChannelID, record.TotalMessages, record.DestinationTopicID)

	d.send(ctx, record, subject, body)
}

// NotifyFailure tells the initiating actor the attempt failed. The reason
// is embedded verbatim so the actor can diagnose before the next retry.
func (d *NotificationDispatcher) NotifyFailure(ctx context.Context, record *secondary.ArchiveRecord, reason string) {
	subject := fmt.Sprintf("Channel %s archive failed", record.ChannelID)
	body := fmt.Sprintf(
		"Archiving of channel %s stopped after %d of %d messages.\n\nError: %s",
		record.ChannelID, record.ArchivedMessages, record.TotalMessages, reason)

	d.send(ctx, record, subject, body)
}

func (d *NotificationDispatcher) send(ctx context.Context, record *secondary.ArchiveRecord, subject, body string) {
	notice := &secondary.NoticeRecord{
		ID:        uuid.NewString(),
		Sender:    d.sender,
		Recipient: record.InitiatedBy,
		Subject:   subject,
		Body:      body,
	}

	if err := d.notices.Create(ctx, notice); err != nil {
		d.logger.Error("Failed to deliver notice",
			zap.String("archive_id", record.ID),
			zap.String("recipient", record.InitiatedBy),
			zap.Error(err))
	}
}
