// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"context"
	"testing"
	"time"

	"github.com/taskwire/taskwire"
)

func TestConsumeAllStopsAtFinalEvent(t *testing.T) {
	ctx := context.Background()
	queue, err := NewQueue(16)
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}

	events := []Event{
		statusEvent("task-1", taskwire.TaskStateSubmitted, false),
		statusEvent("task-1", taskwire.TaskStateWorking, false),
		statusEvent("task-1", taskwire.TaskStateCompleted, true),
		// Never delivered: the stream ends at the final event.
		statusEvent("task-1", taskwire.TaskStateWorking, false),
	}
	for _, ev := range events {
		if err := queue.Enqueue(ctx, ev); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	consumer := NewConsumer(queue)
	var got []Event
	for ev := range consumer.ConsumeAll(ctx) {
		got = append(got, ev)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if !got[len(got)-1].IsFinal() {
		t.Error("expected last delivered event to be final")
	}
	if !queue.IsClosed() {
		t.Error("expected queue to be closed after final event")
	}
}

func TestConsumeAllStopsOnContextCancel(t *testing.T) {
	queue, err := NewQueue(4)
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	consumer := NewConsumer(queue)
	out := consumer.ConsumeAll(ctx)

	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected channel to close without events")
		}
	case <-time.After(time.Second):
		t.Fatal("ConsumeAll did not stop on context cancel")
	}
}

func TestConsumeAllStopsOnClosedQueue(t *testing.T) {
	ctx := context.Background()
	queue, err := NewQueue(4)
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	if err := queue.Enqueue(ctx, statusEvent("task-1", taskwire.TaskStateWorking, false)); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if err := queue.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	consumer := NewConsumer(queue)
	var got []Event
	for ev := range consumer.ConsumeAll(ctx) {
		got = append(got, ev)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 buffered event before close, got %d", len(got))
	}
}

func TestConsumerProducerError(t *testing.T) {
	queue, err := NewQueue(4)
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}
	consumer := NewConsumer(queue)

	if consumer.ProducerError() != nil {
		t.Error("expected no producer error initially")
	}
	wantErr := context.DeadlineExceeded
	consumer.SetProducerError(wantErr)
	if consumer.ProducerError() != wantErr {
		t.Error("expected recorded producer error")
	}
}
