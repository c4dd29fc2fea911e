package redisq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/example/archivist/internal/ports/secondary"
)

// releaseScript deletes the lock only if the caller still holds it, so a
// worker whose lock expired cannot release a newer holder's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lock implements secondary.ExecutionLock with Redis SET NX. The TTL bounds
// how long a crashed worker can block an archive.
type Lock struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewLock connects to Redis and returns the lock.
func NewLock(addr string, ttl time.Duration) (*Lock, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Lock{rdb: rdb, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (l *Lock) Close() error {
	return l.rdb.Close()
}

// Acquire attempts to take the per-archive lock.
func (l *Lock) Acquire(ctx context.Context, archiveID string) (string, bool, error) {
	token := uuid.NewString()

	acquired, err := l.rdb.SetNX(ctx, lockKey(archiveID), token, l.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return "", false, nil
	}

	return token, true, nil
}

// Release releases the lock if the token still holds it.
func (l *Lock) Release(ctx context.Context, archiveID, token string) error {
	if err := releaseScript.Run(ctx, l.rdb, []string{lockKey(archiveID)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return nil
}

func lockKey(archiveID string) string {
	return "archive-lock:" + archiveID
}

// Ensure Lock implements the interface.
var _ secondary.ExecutionLock = (*Lock)(nil)
