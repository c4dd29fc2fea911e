package secondary

import "context"

// BatchTx is the write surface available inside one batch commit. Post
// creation, reference repointing, and the cursor advance either all apply
// or none of them do.
type BatchTx interface {
	// CreatePost appends a post to its topic after all existing posts.
	CreatePost(ctx context.Context, post *PostRecord) error

	// RepointReactions re-points reactions owned by the given messages to
	// the post. No-op for reactions already migrated.
	RepointReactions(ctx context.Context, messageIDs []string, postID string) error

	// RepointAttachments re-points attachments owned by the given messages
	// to the post.
	RepointAttachments(ctx context.Context, messageIDs []string, postID string) error

	// RepointRevisions re-points edit revisions owned by the given messages
	// to the post.
	RepointRevisions(ctx context.Context, messageIDs []string, postID string) error

	// RepointWebhookEvents re-points webhook event records owned by the
	// given messages to the post.
	RepointWebhookEvents(ctx context.Context, messageIDs []string, postID string) error

	// AdvanceCursor increments the archive's archived-message checkpoint.
	AdvanceCursor(ctx context.Context, archiveID string, delta int) error
}

// UnitOfWork runs a set of batch writes inside one transaction. If fn
// returns an error the whole batch rolls back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx BatchTx) error) error
}
