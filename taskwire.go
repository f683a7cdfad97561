// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskwire provides the task lifecycle data model for the
// Agent-to-Agent (A2A) communication protocol. A client submits a message,
// the server creates or resumes a task, and the task advances through a
// bounded state machine while emitting status and artifact events that are
// observable through a streaming or polling transport.
package taskwire

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Version is the current version of the task lifecycle protocol.
const Version = "0.1.0"

// TaskState represents the state of a Task.
type TaskState string

const (
	// TaskStateSubmitted indicates the task has been received but work has
	// not started yet.
	TaskStateSubmitted TaskState = "submitted"

	// TaskStateWorking indicates the task is being worked on.
	TaskStateWorking TaskState = "working"

	// TaskStateInputRequired indicates the task is paused waiting for
	// additional input from the client. The task resumes when a new message
	// bearing the same task ID arrives.
	TaskStateInputRequired TaskState = "input-required"

	// TaskStateCompleted indicates the task has finished successfully.
	TaskStateCompleted TaskState = "completed"

	// TaskStateCanceled indicates the task has been canceled.
	TaskStateCanceled TaskState = "canceled"

	// TaskStateFailed indicates the task has failed.
	TaskStateFailed TaskState = "failed"
)

// IsTerminal reports whether the state accepts no further transitions.
func (s TaskState) IsTerminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
		return true
	default:
		return false
	}
}

// IsValid reports whether the state is one of the defined task states.
func (s TaskState) IsValid() bool {
	switch s {
	case TaskStateSubmitted, TaskStateWorking, TaskStateInputRequired,
		TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether a status update moving the task from s to
// next is legal. Any non-terminal state may advance; terminal states accept
// nothing. input-required additionally allows moving back to working when a
// resume message arrives.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	if !next.IsValid() {
		return false
	}
	return !s.IsTerminal()
}

// TaskStatus captures the observable status of a task at one transition.
type TaskStatus struct {
	State TaskState `json:"state"`

	// Message is an optional human or agent readable note attached at this
	// transition, such as a prompt for required input or an error description.
	Message string `json:"message,omitzero"`

	// Final is true when this status is the terminal observation for the
	// current streaming session. It is not the same as a terminal state:
	// input-required is final for a stream while the task itself may later
	// resume.
	Final bool `json:"final"`
}

// Task represents a unit of client-requested work tracked through the state
// machine. A Task is created on first contact with an unknown task ID and is
// mutated exclusively through events applied by the task manager.
type Task struct {
	ID        string `json:"id"`
	ContextID string `json:"context_id"`

	Status TaskStatus `json:"status"`

	// Artifacts is the ordered, append-only sequence of outputs produced
	// while executing the task. Entries are never removed or reordered; the
	// only in-place edit permitted is completing an in-progress streamed
	// artifact.
	Artifacts []*Artifact `json:"artifacts"`

	// History holds the messages exchanged over the task's lifetime,
	// including resume submissions.
	History []*Message `json:"history,omitzero"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate ensures the Task is well formed.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if !t.Status.State.IsValid() {
		return fmt.Errorf("invalid task state: %q", t.Status.State)
	}
	for i, artifact := range t.Artifacts {
		if artifact == nil {
			return fmt.Errorf("artifact at index %d cannot be nil", i)
		}
		if err := artifact.Validate(); err != nil {
			return fmt.Errorf("artifact at index %d is invalid: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the task. Stores hand out clones so that no
// caller holds a mutable reference into stored state.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := &Task{
		ID:        t.ID,
		ContextID: t.ContextID,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.Artifacts != nil {
		clone.Artifacts = make([]*Artifact, len(t.Artifacts))
		for i, artifact := range t.Artifacts {
			clone.Artifacts[i] = artifact.Clone()
		}
	}
	if t.History != nil {
		clone.History = make([]*Message, len(t.History))
		for i, msg := range t.History {
			clone.History[i] = msg.Clone()
		}
	}
	return clone
}

// NewTask creates a Task from the first message observed for it.
//
// If the message carries a task ID it is adopted, otherwise a new one is
// generated; the same applies to the context ID. The task starts in the
// submitted state with the triggering message recorded in its history. This
// synthesis happens exactly once per task ID.
func NewTask(message *Message) (*Task, error) {
	if message == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}
	if err := message.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request message: %w", err)
	}

	taskID := message.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	contextID := message.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}

	now := time.Now().UTC()
	return &Task{
		ID:        taskID,
		ContextID: contextID,
		Status: TaskStatus{
			State: TaskStateSubmitted,
		},
		Artifacts: make([]*Artifact, 0),
		History:   []*Message{message},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
