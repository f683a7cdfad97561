// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package event provides the ordered event channel that decouples task
// execution from the client-facing response stream. Agents enqueue status
// and artifact update events while executing; a consumer drains them in FIFO
// order until a final event ends the stream session.
package event

import (
	"github.com/taskwire/taskwire"
)

// Kind discriminates event variants.
type Kind string

const (
	// KindStatusUpdate identifies a task status transition event.
	KindStatusUpdate Kind = "status-update"

	// KindArtifactUpdate identifies a task artifact event.
	KindArtifactUpdate Kind = "artifact-update"
)

// Event is a transient status or artifact notification produced while a task
// executes. Events are not persisted themselves; only their effect on the
// task record is.
type Event interface {
	// GetKind returns the event kind for type discrimination.
	GetKind() Kind
	// GetTaskID returns the task ID this event targets.
	GetTaskID() string
	// IsFinal reports whether this event terminates the stream session.
	IsFinal() bool
}

// StatusUpdateEvent signals a task status transition.
type StatusUpdateEvent struct {
	TaskID    string              `json:"task_id"`
	ContextID string              `json:"context_id,omitzero"`
	Status    taskwire.TaskStatus `json:"status"`

	// Final is true when this status closes the stream session.
	Final bool `json:"final"`
}

// GetKind returns KindStatusUpdate.
func (e *StatusUpdateEvent) GetKind() Kind { return KindStatusUpdate }

// GetTaskID returns the task ID this event targets.
func (e *StatusUpdateEvent) GetTaskID() string { return e.TaskID }

// IsFinal reports whether this status closes the stream session.
func (e *StatusUpdateEvent) IsFinal() bool { return e.Final }

// ArtifactUpdateEvent carries a new artifact or a chunk extending one.
type ArtifactUpdateEvent struct {
	TaskID    string             `json:"task_id"`
	ContextID string             `json:"context_id,omitzero"`
	Artifact  *taskwire.Artifact `json:"artifact"`

	// Append extends the existing artifact with the same ID instead of
	// starting a new one.
	Append bool `json:"append"`

	// LastChunk marks the final piece of a streamed artifact.
	LastChunk bool `json:"last_chunk"`
}

// GetKind returns KindArtifactUpdate.
func (e *ArtifactUpdateEvent) GetKind() Kind { return KindArtifactUpdate }

// GetTaskID returns the task ID this event targets.
func (e *ArtifactUpdateEvent) GetTaskID() string { return e.TaskID }

// IsFinal always returns false; artifact events never end a stream.
func (e *ArtifactUpdateEvent) IsFinal() bool { return false }

// NewStatusUpdate creates a status update event.
func NewStatusUpdate(taskID, contextID string, status taskwire.TaskStatus, final bool) *StatusUpdateEvent {
	return &StatusUpdateEvent{
		TaskID:    taskID,
		ContextID: contextID,
		Status:    status,
		Final:     final,
	}
}

// NewArtifactUpdate creates an artifact update event.
func NewArtifactUpdate(taskID, contextID string, artifact *taskwire.Artifact, appendParts, lastChunk bool) *ArtifactUpdateEvent {
	return &ArtifactUpdateEvent{
		TaskID:    taskID,
		ContextID: contextID,
		Artifact:  artifact,
		Append:    appendParts,
		LastChunk: lastChunk,
	}
}
