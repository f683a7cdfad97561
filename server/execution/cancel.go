// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package execution

import (
	"context"
	"sync"
)

// Registry tracks the cancel function of every running execution so a
// cancellation request can stop in-flight work.
type Registry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{cancels: make(map[string]context.CancelFunc)}
}

// Register records the cancel function for a task's execution, replacing any
// previous registration for the same ID.
func (r *Registry) Register(taskID string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels[taskID] = cancel
}

// Unregister removes the registration for a task.
func (r *Registry) Unregister(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cancels, taskID)
}

// Cancel stops the running execution for a task, reporting whether one was
// registered. Canceling a task with no running execution is not an error;
// the record update happens regardless.
func (r *Registry) Cancel(taskID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[taskID]
	delete(r.cancels, taskID)
	r.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

// Size returns the number of registered executions.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cancels)
}
