package secondary

import "context"

// Job is one unit of scheduler work: execute an archive. Attempts counts
// prior deliveries so the worker can stop requeueing a persistent failure.
type Job struct {
	ArchiveID string `json:"archive_id"`
	Attempts  int    `json:"attempts"`
}

// JobQueue defines the secondary port for the archive job queue. Delivery
// is at-least-once; the pipeline's checkpoint makes redelivery safe.
type JobQueue interface {
	// Enqueue pushes a job onto the queue.
	Enqueue(ctx context.Context, job Job) error

	// Pop blocks until a job is available or the context is cancelled.
	Pop(ctx context.Context) (*Job, error)
}

// ExecutionLock defines the secondary port for the per-archive advisory
// lock. Two concurrent executions of the same archive would race on the
// checkpoint, so the pipeline refuses to run without the lock.
type ExecutionLock interface {
	// Acquire attempts to take the lock for an archive. On success it
	// returns a holder token to pass to Release and acquired=true.
	Acquire(ctx context.Context, archiveID string) (token string, acquired bool, err error)

	// Release releases the lock if the token still holds it.
	Release(ctx context.Context, archiveID, token string) error
}
