// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package taskwire

import (
	"context"
	"log/slog"
)

// ApplyArtifact updates a task's artifact log with new artifact data from an
// artifact update event.
//
// The log is append-only: a previously recorded artifact is never removed or
// reordered. When appendParts is false the artifact is added as a new entry,
// unless an in-progress entry with the same ID exists, in which case that
// entry is completed in place. When appendParts is true the new content
// extends the existing artifact with the same ID; an append chunk targeting
// an unknown artifact ID is ignored with a diagnostic.
func ApplyArtifact(ctx context.Context, task *Task, artifact *Artifact, appendParts, lastChunk bool) {
	logger := slog.Default()

	if task.Artifacts == nil {
		task.Artifacts = []*Artifact{}
	}

	var existing *Artifact
	for _, a := range task.Artifacts {
		if a.ID == artifact.ID {
			existing = a
			break
		}
	}

	switch {
	case existing == nil && !appendParts:
		logger.InfoContext(ctx, "adding new artifact for task",
			slog.String("artifact_id", artifact.ID), slog.String("task_id", task.ID))
		added := artifact.Clone()
		added.LastChunk = lastChunk
		task.Artifacts = append(task.Artifacts, added)

	case existing != nil && !appendParts:
		// A fresh chunk for an ID we already hold completes or restates the
		// in-progress entry without adding a duplicate.
		logger.InfoContext(ctx, "completing in-progress artifact for task",
			slog.String("artifact_id", artifact.ID), slog.String("task_id", task.ID))
		existing.Kind = artifact.Kind
		existing.Text = artifact.Text
		existing.Data = artifact.Data
		existing.File = artifact.File
		existing.Name = artifact.Name
		existing.Description = artifact.Description
		existing.LastChunk = lastChunk

	case existing != nil:
		logger.InfoContext(ctx, "appending chunk to artifact for task",
			slog.String("artifact_id", artifact.ID), slog.String("task_id", task.ID))
		existing.Text += artifact.Text
		if artifact.Data != nil {
			if existing.Data == nil {
				existing.Data = map[string]any{}
			}
			for k, v := range artifact.Data {
				existing.Data[k] = v
			}
		}
		if lastChunk {
			existing.LastChunk = true
		}

	default:
		// Append chunk for an artifact we never saw. Drop it.
		logger.InfoContext(ctx, "received append chunk for nonexistent artifact, ignoring",
			slog.String("artifact_id", artifact.ID), slog.String("task_id", task.ID))
	}
}
