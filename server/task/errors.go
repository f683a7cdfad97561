// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"fmt"

	"github.com/taskwire/taskwire"
)

// StoreError wraps a persistence failure. Store I/O failures surface to the
// immediate caller as hard errors: there is no safe terminal state to record
// when persistence itself is broken.
type StoreError struct {
	Op     string
	TaskID string
	Err    error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("task store %s failed for task %s: %v", e.Op, e.TaskID, e.Err)
}

// Unwrap returns the underlying error.
func (e StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a StoreError.
func NewStoreError(op, taskID string, err error) StoreError {
	return StoreError{Op: op, TaskID: taskID, Err: err}
}

// ValidationError indicates a record that failed validation before a save.
type ValidationError struct {
	TaskID string
	Err    error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("task %s validation failed: %v", e.TaskID, e.Err)
}

// Unwrap returns the underlying error.
func (e ValidationError) Unwrap() error { return e.Err }

// TerminalStateError indicates an event targeted a task already in a
// terminal state. The Manager treats this as a no-op with a diagnostic; the
// type exists for callers that want to detect the condition.
type TerminalStateError struct {
	TaskID string
	State  taskwire.TaskState
}

func (e TerminalStateError) Error() string {
	return fmt.Sprintf("task %s in terminal state %s cannot be updated", e.TaskID, e.State)
}
