// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package task provides task persistence and the task state machine. Stores
// offer keyed, linearized-per-ID access to task records; the Manager applies
// lifecycle events to records and persists the result.
package task

import (
	"context"

	"github.com/taskwire/taskwire"
)

// Store is the persistence contract for task records.
//
// Operations on different task IDs may proceed concurrently; operations on
// the same ID behave as if executed under a single mutual-exclusion lock
// scoped to the store instance. No operation ever observes a partially
// written record.
type Store interface {
	// Save upserts a task record, replacing any record with the same ID.
	Save(ctx context.Context, task *taskwire.Task) error

	// Get retrieves a task by ID. A missing ID yields
	// taskwire.TaskNotFoundError, never a partial record.
	Get(ctx context.Context, taskID string) (*taskwire.Task, error)

	// Delete removes a task by ID. It reports whether a record existed;
	// deleting an absent ID is not an error.
	Delete(ctx context.Context, taskID string) (bool, error)

	// Close cleanly shuts down the storage backend.
	Close(ctx context.Context) error
}

// Lister is an optional Store capability for enumerating stored task IDs.
type Lister interface {
	// List returns the IDs of all stored tasks.
	List(ctx context.Context) ([]string, error)
}

// Clearer is an optional Store capability for dropping every stored task.
type Clearer interface {
	// Clear removes all tasks from the store.
	Clear(ctx context.Context) error
}
