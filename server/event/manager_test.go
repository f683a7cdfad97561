// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"testing"

	"github.com/taskwire/taskwire"
)

func TestQueueManagerGetReturnsSameQueue(t *testing.T) {
	manager := NewInMemoryQueueManager(0)

	first, err := manager.Get("task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := manager.Get("task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if first != second {
		t.Error("expected the same queue for repeated Get")
	}
	if manager.Size() != 1 {
		t.Errorf("expected 1 managed queue, got %d", manager.Size())
	}
}

func TestQueueManagerTap(t *testing.T) {
	ctx := context.Background()
	manager := NewInMemoryQueueManager(8)

	tap, err := manager.Tap("task-1")
	if err != nil {
		t.Fatalf("Tap failed: %v", err)
	}
	queue, err := manager.Get("task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if err := queue.Enqueue(ctx, statusEvent("task-1", taskwire.TaskStateWorking, false)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	ev, err := tap.Dequeue(ctx)
	if err != nil {
		t.Fatalf("tap Dequeue failed: %v", err)
	}
	if ev.GetTaskID() != "task-1" {
		t.Errorf("expected task-1 event, got %s", ev.GetTaskID())
	}
}

func TestQueueManagerClose(t *testing.T) {
	manager := NewInMemoryQueueManager(8)

	queue, err := manager.Get("task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := manager.Close("task-1"); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !queue.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if manager.Size() != 0 {
		t.Errorf("expected no managed queues, got %d", manager.Size())
	}

	// Closing an unknown task is a no-op.
	if err := manager.Close("unknown"); err != nil {
		t.Errorf("Close of unknown task failed: %v", err)
	}
}

func TestQueueManagerCloseAll(t *testing.T) {
	manager := NewInMemoryQueueManager(8)

	first, err := manager.Get("task-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := manager.Get("task-2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if err := manager.CloseAll(); err != nil {
		t.Fatalf("CloseAll failed: %v", err)
	}
	if !first.IsClosed() || !second.IsClosed() {
		t.Error("expected all queues to be closed")
	}
	if manager.Size() != 0 {
		t.Errorf("expected no managed queues, got %d", manager.Size())
	}
}
