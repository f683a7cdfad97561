// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"sync"
)

// QueueManager hands out event queues keyed by task ID.
type QueueManager interface {
	// Get returns the queue for a task, creating it if necessary.
	Get(taskID string) (*Queue, error)
	// Tap creates a child queue for the task that receives copies of all
	// future events enqueued to the parent.
	Tap(taskID string) (*Queue, error)
	// Close closes and removes the queue for a task.
	Close(taskID string) error
	// CloseAll closes every managed queue.
	CloseAll() error
}

// InMemoryQueueManager is the process-local QueueManager.
type InMemoryQueueManager struct {
	mu       sync.RWMutex
	queues   map[string]*Queue
	capacity int
}

var _ QueueManager = (*InMemoryQueueManager)(nil)

// NewInMemoryQueueManager creates a queue manager whose queues have the
// given capacity. A capacity of 0 or less selects DefaultQueueSize.
func NewInMemoryQueueManager(capacity int) *InMemoryQueueManager {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	return &InMemoryQueueManager{
		queues:   make(map[string]*Queue),
		capacity: capacity,
	}
}

// Get returns the queue for a task, creating it if necessary.
func (m *InMemoryQueueManager) Get(taskID string) (*Queue, error) {
	m.mu.RLock()
	queue, ok := m.queues[taskID]
	m.mu.RUnlock()
	if ok {
		return queue, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another goroutine may have raced us here.
	if queue, ok = m.queues[taskID]; ok {
		return queue, nil
	}

	queue, err := NewQueue(m.capacity)
	if err != nil {
		return nil, err
	}
	m.queues[taskID] = queue
	return queue, nil
}

// Tap creates a child queue for the task.
func (m *InMemoryQueueManager) Tap(taskID string) (*Queue, error) {
	queue, err := m.Get(taskID)
	if err != nil {
		return nil, err
	}
	return queue.Tap()
}

// Close closes and removes the queue for a task. Closing an unknown task is
// a no-op.
func (m *InMemoryQueueManager) Close(taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue, ok := m.queues[taskID]
	if !ok {
		return nil
	}
	delete(m.queues, taskID)
	return queue.Close()
}

// CloseAll closes every managed queue.
func (m *InMemoryQueueManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for taskID, queue := range m.queues {
		if err := queue.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.queues, taskID)
	}
	return firstErr
}

// Size returns the number of managed queues.
func (m *InMemoryQueueManager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.queues)
}
