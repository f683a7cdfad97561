// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package taskwire

import (
	"context"
	"testing"
)

func newTestTask(t *testing.T) *Task {
	t.Helper()
	message, err := NewUserTextMessage("hello", "task-1", "ctx-1")
	if err != nil {
		t.Fatalf("NewUserTextMessage failed: %v", err)
	}
	task, err := NewTask(message)
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	return task
}

func TestApplyArtifactAddsNew(t *testing.T) {
	ctx := context.Background()
	task := newTestTask(t)

	artifact, err := NewTextArtifact("result", "chunk one", "")
	if err != nil {
		t.Fatalf("NewTextArtifact failed: %v", err)
	}

	ApplyArtifact(ctx, task, artifact, false, false)

	if len(task.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(task.Artifacts))
	}
	if task.Artifacts[0].Text != "chunk one" {
		t.Errorf("expected text %q, got %q", "chunk one", task.Artifacts[0].Text)
	}
	if task.Artifacts[0].LastChunk {
		t.Error("expected in-progress artifact")
	}
}

func TestApplyArtifactAppendsChunks(t *testing.T) {
	ctx := context.Background()
	task := newTestTask(t)

	first, err := NewTextArtifact("result", "one ", "")
	if err != nil {
		t.Fatalf("NewTextArtifact failed: %v", err)
	}
	ApplyArtifact(ctx, task, first, false, false)

	chunk := first.Clone()
	chunk.Text = "two "
	ApplyArtifact(ctx, task, chunk, true, false)

	last := first.Clone()
	last.Text = "three"
	ApplyArtifact(ctx, task, last, true, true)

	if len(task.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(task.Artifacts))
	}
	got := task.Artifacts[0]
	if got.Text != "one two three" {
		t.Errorf("expected accumulated text, got %q", got.Text)
	}
	if !got.LastChunk {
		t.Error("expected final chunk to complete the artifact")
	}
}

func TestApplyArtifactCompletesInPlace(t *testing.T) {
	ctx := context.Background()
	task := newTestTask(t)

	first, err := NewTextArtifact("result", "partial", "")
	if err != nil {
		t.Fatalf("NewTextArtifact failed: %v", err)
	}
	ApplyArtifact(ctx, task, first, false, false)

	final := first.Clone()
	final.Text = "complete"
	ApplyArtifact(ctx, task, final, false, true)

	if len(task.Artifacts) != 1 {
		t.Fatalf("expected 1 artifact after completion, got %d", len(task.Artifacts))
	}
	if task.Artifacts[0].Text != "complete" {
		t.Errorf("expected replaced text, got %q", task.Artifacts[0].Text)
	}
	if !task.Artifacts[0].LastChunk {
		t.Error("expected completed artifact")
	}
}

func TestApplyArtifactIgnoresAppendToUnknown(t *testing.T) {
	ctx := context.Background()
	task := newTestTask(t)

	artifact, err := NewTextArtifact("result", "orphan chunk", "")
	if err != nil {
		t.Fatalf("NewTextArtifact failed: %v", err)
	}
	ApplyArtifact(ctx, task, artifact, true, false)

	if len(task.Artifacts) != 0 {
		t.Errorf("expected orphan append to be dropped, got %d artifacts", len(task.Artifacts))
	}
}

func TestApplyArtifactPreservesOrder(t *testing.T) {
	ctx := context.Background()
	task := newTestTask(t)

	for _, text := range []string{"first", "second", "third"} {
		artifact, err := NewTextArtifact(text, text, "")
		if err != nil {
			t.Fatalf("NewTextArtifact failed: %v", err)
		}
		ApplyArtifact(ctx, task, artifact, false, true)
	}

	if len(task.Artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(task.Artifacts))
	}
	for i, want := range []string{"first", "second", "third"} {
		if task.Artifacts[i].Name != want {
			t.Errorf("artifact %d: expected %q, got %q", i, want, task.Artifacts[i].Name)
		}
	}
}

func TestApplyArtifactMergesData(t *testing.T) {
	ctx := context.Background()
	task := newTestTask(t)

	first, err := NewDataArtifact("form", map[string]any{"name": "demo"}, "")
	if err != nil {
		t.Fatalf("NewDataArtifact failed: %v", err)
	}
	ApplyArtifact(ctx, task, first, false, false)

	chunk := first.Clone()
	chunk.Data = map[string]any{"email": "demo@example.com"}
	ApplyArtifact(ctx, task, chunk, true, true)

	got := task.Artifacts[0].Data
	if got["name"] != "demo" || got["email"] != "demo@example.com" {
		t.Errorf("expected merged data, got %v", got)
	}
}
