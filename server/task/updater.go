// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskwire/taskwire"
	"github.com/taskwire/taskwire/server/event"
)

// Updater is the agent-facing handle for publishing lifecycle events during
// one execution. It enforces the terminal latch: once a final status has been
// published, every further publish fails instead of silently corrupting the
// stream.
type Updater struct {
	taskID    string
	contextID string
	queue     *event.Queue

	mu       sync.Mutex
	terminal bool
}

// NewUpdater creates an Updater publishing to the given queue.
func NewUpdater(taskID, contextID string, queue *event.Queue) (*Updater, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}
	if queue == nil {
		return nil, fmt.Errorf("event queue cannot be nil")
	}
	return &Updater{
		taskID:    taskID,
		contextID: contextID,
		queue:     queue,
	}, nil
}

// TaskID returns the task ID this updater publishes for.
func (u *Updater) TaskID() string { return u.taskID }

// ContextID returns the context ID this updater publishes for.
func (u *Updater) ContextID() string { return u.contextID }

// IsTerminal reports whether a final status has already been published.
func (u *Updater) IsTerminal() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.terminal
}

// UpdateStatus publishes a status update event. final marks the event as the
// last one of the stream session; a terminal state is always final.
func (u *Updater) UpdateStatus(ctx context.Context, state taskwire.TaskState, message string, final bool) error {
	if !state.IsValid() {
		return fmt.Errorf("invalid task state: %q", state)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminal {
		return TerminalStateError{TaskID: u.taskID, State: state}
	}
	if final || state.IsTerminal() {
		u.terminal = true
		final = true
	}

	status := taskwire.TaskStatus{State: state, Message: message, Final: final}
	return u.queue.Enqueue(ctx, event.NewStatusUpdate(u.taskID, u.contextID, status, final))
}

// AddArtifact publishes an artifact update event. appendParts extends the
// artifact with the same ID; lastChunk marks the final piece of a streamed
// artifact.
func (u *Updater) AddArtifact(ctx context.Context, artifact *taskwire.Artifact, appendParts, lastChunk bool) error {
	if artifact == nil {
		return fmt.Errorf("artifact cannot be nil")
	}
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("artifact validation failed: %w", err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.terminal {
		return TerminalStateError{TaskID: u.taskID, State: taskwire.TaskState("")}
	}
	return u.queue.Enqueue(ctx, event.NewArtifactUpdate(u.taskID, u.contextID, artifact, appendParts, lastChunk))
}

// Submit marks the task as submitted.
func (u *Updater) Submit(ctx context.Context, message string) error {
	return u.UpdateStatus(ctx, taskwire.TaskStateSubmitted, message, false)
}

// StartWork marks the task as working.
func (u *Updater) StartWork(ctx context.Context, message string) error {
	return u.UpdateStatus(ctx, taskwire.TaskStateWorking, message, false)
}

// Complete marks the task as completed. This is a final event.
func (u *Updater) Complete(ctx context.Context, message string) error {
	return u.UpdateStatus(ctx, taskwire.TaskStateCompleted, message, true)
}

// Failed marks the task as failed. This is a final event.
func (u *Updater) Failed(ctx context.Context, message string) error {
	return u.UpdateStatus(ctx, taskwire.TaskStateFailed, message, true)
}

// Cancel marks the task as canceled. This is a final event.
func (u *Updater) Cancel(ctx context.Context, message string) error {
	return u.UpdateStatus(ctx, taskwire.TaskStateCanceled, message, true)
}

// RequiresInput pauses the task waiting for client input. The event is final
// for the current stream session, but the task state is not terminal; a
// follow-up message with the same task ID resumes it.
func (u *Updater) RequiresInput(ctx context.Context, message string) error {
	return u.UpdateStatus(ctx, taskwire.TaskStateInputRequired, message, true)
}
