// Package queue provides the bounded drop-oldest buffer that decouples the
// independently-paced producers and consumers of a session pipeline. Live
// captioning favors freshness over completeness, so an enqueue under pressure
// discards the oldest buffered item instead of blocking the producer.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Take once the queue is closed and drained
var ErrClosed = errors.New("queue closed")

// Queue is a bounded FIFO with drop-oldest overflow. One producer and one
// consumer; both may run on different goroutines.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	limit  int
	closed bool

	// signal wakes a blocked Take; capacity 1 coalesces notifications
	signal chan struct{}
}

// New creates a queue holding at most capacity items
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		limit:  capacity,
		signal: make(chan struct{}, 1),
	}
}

// Put enqueues item, discarding the oldest buffered item when at capacity.
// It never blocks. The return value reports whether an item was dropped.
// Puts after Close are ignored.
func (q *Queue[T]) Put(item T) (dropped bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if len(q.items) == q.limit {
		q.items = q.items[1:]
		dropped = true
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return dropped
}

// Take blocks until at least one item is buffered, then drains everything
// currently buffered in one batch, oldest first. It returns ctx.Err() when
// the context is canceled and ErrClosed once the queue is closed and empty.
func (q *Queue[T]) Take(ctx context.Context) ([]T, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			batch := q.items
			q.items = nil
			q.mu.Unlock()
			return batch, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, ErrClosed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.signal:
		}
	}
}

// Len returns the number of buffered items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further Puts and wakes any blocked Take. Buffered items
// remain takeable until drained. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}
