package redisq

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/archivist/internal/ports/secondary"
)

func TestQueue_EnqueuePop(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	q, err := NewQueue(mr.Addr())
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()

	err = q.Enqueue(ctx, secondary.Job{ArchiveID: "ARC-001"})
	require.NoError(t, err)
	err = q.Enqueue(ctx, secondary.Job{ArchiveID: "ARC-002", Attempts: 2})
	require.NoError(t, err)

	// FIFO order, attempts survive the round trip.
	first, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ARC-001", first.ArchiveID)
	assert.Equal(t, 0, first.Attempts)

	second, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ARC-002", second.ArchiveID)
	assert.Equal(t, 2, second.Attempts)
}

func TestQueue_PopUnblocksOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	q, err := NewQueue(mr.Addr())
	require.NoError(t, err)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := q.Pop(ctx)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Pop did not unblock on context cancel")
	}
}

func TestQueue_ConnectFailure(t *testing.T) {
	_, err := NewQueue("127.0.0.1:1")
	assert.Error(t, err)
}
