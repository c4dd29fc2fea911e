// Package redisq contains the Redis implementations of the job queue and
// the per-archive execution lock.
package redisq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/example/archivist/internal/ports/secondary"
)

const queueKey = "queue:archive"

// Queue implements secondary.JobQueue with a Redis list. Delivery is
// at-least-once: a popped job that fails is re-enqueued by the worker.
type Queue struct {
	rdb *redis.Client
}

// NewQueue connects to Redis and returns the queue.
func NewQueue(addr string) (*Queue, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (q *Queue) Close() error {
	return q.rdb.Close()
}

// Enqueue pushes a job onto the queue.
func (q *Queue) Enqueue(ctx context.Context, job secondary.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.rdb.LPush(ctx, queueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	return nil
}

// Pop blocks until a job is available or the context is cancelled.
func (q *Queue) Pop(ctx context.Context) (*secondary.Job, error) {
	result, err := q.rdb.BRPop(ctx, 0, queueKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to pop job: %w", err)
	}

	// BRPop returns [key, value]
	var job secondary.Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// Ensure Queue implements the interface.
var _ secondary.JobQueue = (*Queue)(nil)
