// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"sync"
)

// DefaultQueueSize is the default queue capacity.
const DefaultQueueSize = 1024

// Queue is an ordered, buffered channel of events for one task stream
// session. A single producer per session is assumed; events are delivered to
// the consumer in exactly the order enqueued. Child queues created with Tap
// receive copies of every event enqueued after the tap.
type Queue struct {
	events    chan Event
	capacity  int
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	closed   bool
	children []*Queue
}

// NewQueue creates a queue with the given capacity. A capacity of 0 selects
// DefaultQueueSize.
func NewQueue(capacity int) (*Queue, error) {
	if capacity < 0 {
		return nil, ErrInvalidQueueSize
	}
	if capacity == 0 {
		capacity = DefaultQueueSize
	}
	return &Queue{
		events:   make(chan Event, capacity),
		capacity: capacity,
		done:     make(chan struct{}),
	}, nil
}

// Enqueue appends an event without blocking. It returns ErrQueueClosed after
// Close and ErrQueueFull when the buffer is at capacity. The event is also
// propagated to all child queues.
func (q *Queue) Enqueue(ctx context.Context, ev Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.events <- ev:
	default:
		return ErrQueueFull
	}

	for _, child := range q.children {
		// Children are taps, delivery to them is best effort.
		_ = child.Enqueue(ctx, ev)
	}
	return nil
}

// Dequeue blocks until an event is available, the context is canceled, or
// the queue is closed and drained.
func (q *Queue) Dequeue(ctx context.Context) (Event, error) {
	select {
	case ev := <-q.events:
		return ev, nil
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case ev := <-q.events:
		return ev, nil
	case <-q.done:
		// Closed while waiting; drain anything already buffered.
		select {
		case ev := <-q.events:
			return ev, nil
		default:
			return nil, ErrQueueClosed
		}
	}
}

// DequeueNoWait returns the next buffered event or ErrQueueEmpty. After the
// queue is closed and drained it returns ErrQueueClosed.
func (q *Queue) DequeueNoWait() (Event, error) {
	select {
	case ev := <-q.events:
		return ev, nil
	default:
		if q.IsClosed() {
			return nil, ErrQueueClosed
		}
		return nil, ErrQueueEmpty
	}
}

// Tap creates a child queue that receives copies of all events enqueued
// after this call.
func (q *Queue) Tap() (*Queue, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrQueueClosed
	}

	child, err := NewQueue(q.capacity)
	if err != nil {
		return nil, err
	}
	q.children = append(q.children, child)
	return child, nil
}

// Close prevents further enqueues. Buffered events remain consumable; child
// queues are closed as well.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		defer q.mu.Unlock()

		q.closed = true
		close(q.done)
		for _, child := range q.children {
			_ = child.Close()
		}
	})
	return nil
}

// IsClosed reports whether Close has been called.
func (q *Queue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Done returns a channel closed when the queue is closed.
func (q *Queue) Done() <-chan struct{} { return q.done }

// Len returns the number of buffered events.
func (q *Queue) Len() int { return len(q.events) }

// Capacity returns the queue capacity.
func (q *Queue) Capacity() int { return q.capacity }
