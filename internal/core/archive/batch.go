package archive

import "fmt"

// NumBatches returns the number of posts a full migration of total messages
// produces with the given batch size.
func NumBatches(total, batchSize int) int {
	if total <= 0 || batchSize <= 0 {
		return 0
	}
	return (total + batchSize - 1) / batchSize
}

// BatchIndex returns the zero-based index of the next batch when archived
// messages have already been committed. The checkpoint counter only ever
// advances in whole batches (the final batch may be short), so the index is
// the number of full-size batches consumed so far.
func BatchIndex(archived, batchSize int) int {
	if batchSize <= 0 {
		return 0
	}
	return archived / batchSize
}

// BatchKey derives the deterministic dedup key for one batch's post. Posts
// carry this key under a unique index, so a replayed batch can never insert
// a second post.
func BatchKey(archiveID string, index int) string {
	return fmt.Sprintf("%s:%d", archiveID, index)
}

// ValidateTitle checks a destination topic title the way the topic store
// does. The returned error is terminal: the same title will fail the same
// way on every retry.
func ValidateTitle(title string) error {
	if len(title) == 0 {
		return Terminalf("topic title cannot be blank")
	}
	if len([]rune(title)) < 3 {
		return Terminalf("topic title %q is too short (minimum 3 characters)", title)
	}
	return nil
}
