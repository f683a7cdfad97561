// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package event

import "errors"

var (
	// ErrQueueClosed is returned when enqueueing to or dequeueing from a
	// closed queue.
	ErrQueueClosed = errors.New("event queue is closed")

	// ErrQueueFull is returned by a non-blocking enqueue when the queue has
	// reached capacity.
	ErrQueueFull = errors.New("event queue is full")

	// ErrQueueEmpty is returned by a non-blocking dequeue when no event is
	// available.
	ErrQueueEmpty = errors.New("event queue is empty")

	// ErrInvalidQueueSize is returned when creating a queue with a negative
	// capacity.
	ErrInvalidQueueSize = errors.New("queue size cannot be negative")
)
