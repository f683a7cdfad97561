// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskwire/taskwire"
)

// InMemoryStore is an in-memory Store. Records are lost when the process
// ends. All operations are serialized by a single mutex, which satisfies the
// per-ID linearization contract.
type InMemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*taskwire.Task
}

var (
	_ Store   = (*InMemoryStore)(nil)
	_ Lister  = (*InMemoryStore)(nil)
	_ Clearer = (*InMemoryStore)(nil)
)

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tasks: make(map[string]*taskwire.Task),
	}
}

// Save upserts a task record.
func (s *InMemoryStore) Save(ctx context.Context, task *taskwire.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return ValidationError{TaskID: task.ID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a clone so callers cannot mutate stored state afterwards.
	s.tasks[task.ID] = task.Clone()
	return nil
}

// Get retrieves a task by ID.
func (s *InMemoryStore) Get(ctx context.Context, taskID string) (*taskwire.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, taskwire.TaskNotFoundError{TaskID: taskID}
	}
	return task.Clone(), nil
}

// Delete removes a task by ID, reporting whether it existed.
func (s *InMemoryStore) Delete(ctx context.Context, taskID string) (bool, error) {
	if taskID == "" {
		return false, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[taskID]; !ok {
		return false, nil
	}
	delete(s.tasks, taskID)
	return true, nil
}

// List returns the IDs of all stored tasks.
func (s *InMemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	return ids, nil
}

// Clear removes all tasks.
func (s *InMemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make(map[string]*taskwire.Task)
	return nil
}

// Close drops all stored tasks.
func (s *InMemoryStore) Close(ctx context.Context) error {
	return s.Clear(ctx)
}

// Size returns the number of stored tasks.
func (s *InMemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
