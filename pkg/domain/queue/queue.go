// Package queue implements the backpressure primitive guarding each
// adapter instance: a concurrency semaphore plus a bounded outstanding
// counter.
package queue

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrQueueFull is returned by Enqueue when the outstanding counter is
// already at max_queue_size.
var ErrQueueFull = errors.New("request queue is full")

// Queue bounds the number of concurrently outstanding and in-flight
// operations. Enqueue first reserves a queue slot (rejecting once
// maxQueueSize outstanding operations exist), then blocks for a
// concurrency slot. Release always frees both, symmetrically, regardless
// of whether the operation succeeded or failed.
type Queue struct {
	sem            chan struct{}
	outstanding    atomic.Int64
	maxQueueSize   int64
}

// New returns a queue bounding concurrency to maxConcurrent and
// outstanding (enqueued but not yet necessarily running) operations to
// maxQueueSize.
func New(maxConcurrent, maxQueueSize int) *Queue {
	return &Queue{
		sem:          make(chan struct{}, maxConcurrent),
		maxQueueSize: int64(maxQueueSize),
	}
}

// Enqueue reserves an outstanding slot, then blocks until a concurrency
// slot is available or ctx is done. On success the caller must call
// Release exactly once.
func (q *Queue) Enqueue(ctx context.Context) error {
	if q.outstanding.Add(1) > q.maxQueueSize {
		q.outstanding.Add(-1)
		return ErrQueueFull
	}

	select {
	case q.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		q.outstanding.Add(-1)
		return ctx.Err()
	}
}

// Release frees the concurrency slot and the outstanding counter acquired
// by a successful Enqueue.
func (q *Queue) Release() {
	<-q.sem
	q.outstanding.Add(-1)
}

// Outstanding returns the current outstanding count, for observability.
func (q *Queue) Outstanding() int64 {
	return q.outstanding.Load()
}
