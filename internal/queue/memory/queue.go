// Package memory provides an in-process bounded queue of source runs.
package memory

import (
	"context"
	"errors"

	"github.com/USDepartmentofLabor/cdf-warn/internal/warn"
)

// ErrClosed is returned by Dequeue once the queue is drained and closed.
var ErrClosed = errors.New("queue closed")

// Queue is a channel-backed warn.Queue.
type Queue struct {
	items chan warn.QueueItem
}

// New returns a queue with the given capacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 64
	}
	return &Queue{items: make(chan warn.QueueItem, capacity)}
}

// Enqueue adds an item, blocking if the queue is full.
func (q *Queue) Enqueue(ctx context.Context, item warn.QueueItem) error {
	select {
	case q.items <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue removes the next item, blocking until one is available. It
// returns ErrClosed after Close once the queue is empty.
func (q *Queue) Dequeue(ctx context.Context) (warn.QueueItem, error) {
	select {
	case item, ok := <-q.items:
		if !ok {
			return warn.QueueItem{}, ErrClosed
		}
		return item, nil
	case <-ctx.Done():
		return warn.QueueItem{}, ctx.Err()
	}
}

// Close stops accepting items. Pending items can still be dequeued.
func (q *Queue) Close() {
	close(q.items)
}
