// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"sync"
)

// Consumer drains a Queue for one stream session, detecting the final event
// and surfacing producer-side failures. A consumer is single use: once the
// stream ends it cannot be restarted.
type Consumer struct {
	queue *Queue

	mu         sync.RWMutex
	producerErr error
}

// NewConsumer creates a consumer for the given queue.
func NewConsumer(queue *Queue) *Consumer {
	return &Consumer{queue: queue}
}

// ConsumeOne returns the next buffered event without blocking.
func (c *Consumer) ConsumeOne() (Event, error) {
	return c.queue.DequeueNoWait()
}

// ConsumeAll returns a channel yielding events in enqueue order. The channel
// closes after a final event has been delivered, when the queue is closed
// and drained, or when the context is canceled. The final event itself is
// delivered before the channel closes.
func (c *Consumer) ConsumeAll(ctx context.Context) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		for {
			c.mu.RLock()
			failed := c.producerErr != nil
			c.mu.RUnlock()
			if failed {
				return
			}

			ev, err := c.queue.Dequeue(ctx)
			if err != nil {
				// Closed-and-drained or canceled; either way the session is
				// over.
				return
			}

			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}

			if ev.IsFinal() {
				_ = c.queue.Close()
				return
			}
		}
	}()

	return out
}

// SetProducerError records a failure from the producing goroutine. The next
// consume iteration stops the stream.
func (c *Consumer) SetProducerError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.producerErr = err
}

// ProducerError returns the recorded producer failure, if any.
func (c *Consumer) ProducerError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.producerErr
}
