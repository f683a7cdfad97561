// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"testing"

	"github.com/taskwire/taskwire"
	"github.com/taskwire/taskwire/server/event"
)

func newTestUpdater(t *testing.T) (*Updater, *event.Queue) {
	t.Helper()
	queue, err := event.NewQueue(16)
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	updater, err := NewUpdater("task-1", "ctx-1", queue)
	if err != nil {
		t.Fatalf("NewUpdater failed: %v", err)
	}
	return updater, queue
}

func TestUpdaterPublishesStatusEvents(t *testing.T) {
	ctx := context.Background()
	updater, queue := newTestUpdater(t)

	if err := updater.StartWork(ctx, "processing"); err != nil {
		t.Fatalf("StartWork failed: %v", err)
	}
	if err := updater.Complete(ctx, "done"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	first, err := queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	working, ok := first.(*event.StatusUpdateEvent)
	if !ok {
		t.Fatalf("expected StatusUpdateEvent, got %T", first)
	}
	if working.Status.State != taskwire.TaskStateWorking || working.Final {
		t.Errorf("unexpected working event: %+v", working)
	}

	second, err := queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	completed, ok := second.(*event.StatusUpdateEvent)
	if !ok {
		t.Fatalf("expected StatusUpdateEvent, got %T", second)
	}
	if completed.Status.State != taskwire.TaskStateCompleted || !completed.IsFinal() {
		t.Errorf("unexpected completed event: %+v", completed)
	}
}

func TestUpdaterTerminalLatch(t *testing.T) {
	ctx := context.Background()
	updater, _ := newTestUpdater(t)

	if err := updater.Failed(ctx, "boom"); err != nil {
		t.Fatalf("Failed failed: %v", err)
	}
	if !updater.IsTerminal() {
		t.Error("expected updater to be terminal after final status")
	}

	err := updater.StartWork(ctx, "too late")
	var terminal TerminalStateError
	if !errors.As(err, &terminal) {
		t.Errorf("expected TerminalStateError, got %v", err)
	}

	artifact, err := taskwire.NewTextArtifact("late", "content", "")
	if err != nil {
		t.Fatalf("NewTextArtifact failed: %v", err)
	}
	err = updater.AddArtifact(ctx, artifact, false, true)
	if !errors.As(err, &terminal) {
		t.Errorf("expected TerminalStateError for artifact, got %v", err)
	}
}

func TestUpdaterRequiresInputIsStreamFinalOnly(t *testing.T) {
	ctx := context.Background()
	updater, queue := newTestUpdater(t)

	if err := updater.RequiresInput(ctx, "need more"); err != nil {
		t.Fatalf("RequiresInput failed: %v", err)
	}

	ev, err := queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	status, ok := ev.(*event.StatusUpdateEvent)
	if !ok {
		t.Fatalf("expected StatusUpdateEvent, got %T", ev)
	}
	if !status.IsFinal() {
		t.Error("expected input-required event to end the stream")
	}
	if status.Status.State.IsTerminal() {
		t.Error("input-required must not be a terminal state")
	}
}

func TestUpdaterTerminalStateImpliesFinal(t *testing.T) {
	ctx := context.Background()
	updater, queue := newTestUpdater(t)

	// Even when the caller does not ask for a final event, a terminal
	// state forces one.
	if err := updater.UpdateStatus(ctx, taskwire.TaskStateCanceled, "", false); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	ev, err := queue.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if !ev.IsFinal() {
		t.Error("expected terminal state event to be final")
	}
	if !updater.IsTerminal() {
		t.Error("expected terminal latch to be set")
	}
}

func TestUpdaterRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	updater, _ := newTestUpdater(t)

	if err := updater.UpdateStatus(ctx, "bogus", "", false); err == nil {
		t.Error("expected error for invalid state")
	}
	if err := updater.AddArtifact(ctx, nil, false, false); err == nil {
		t.Error("expected error for nil artifact")
	}

	if _, err := NewUpdater("", "ctx-1", nil); err == nil {
		t.Error("expected error for empty task ID")
	}
}
