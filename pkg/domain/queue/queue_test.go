package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnqueueRejectsWhenQueueFull(t *testing.T) {
	q := New(1, 1)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx))
	require.ErrorIs(t, q.Enqueue(ctx), ErrQueueFull)
	q.Release()
}

func TestEnqueueBlocksOnConcurrencyThenReleases(t *testing.T) {
	q := New(1, 2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx))
	require.Equal(t, int64(1), q.Outstanding())

	done := make(chan struct{})
	go func() {
		require.NoError(t, q.Enqueue(ctx))
		close(done)
		q.Release()
	}()

	select {
	case <-done:
		t.Fatal("second enqueue should have blocked on the concurrency semaphore")
	case <-time.After(30 * time.Millisecond):
	}

	q.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second enqueue never unblocked")
	}
}

func TestEnqueueRespectsContextCancellation(t *testing.T) {
	q := New(1, 2)
	require.NoError(t, q.Enqueue(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, int64(1), q.Outstanding())
}
