// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/taskwire/taskwire"
)

func newTestAgent(t *testing.T, generator ChunkGenerator) *Agent {
	t.Helper()
	a, err := New(generator, WithStepDelay(0))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a
}

func collect(t *testing.T, updates <-chan Update) []Update {
	t.Helper()
	var got []Update
	for update := range updates {
		got = append(got, update)
	}
	if len(got) == 0 {
		t.Fatal("expected at least one update")
	}
	return got
}

func TestAgentTextScenario(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, &ScriptedGenerator{Chunks: []string{"Hello, ", "world."}})

	got := collect(t, a.Stream(ctx, KindText, "say hello"))

	last := got[len(got)-1]
	if !last.Done {
		t.Error("expected final update to be done")
	}
	if last.State != taskwire.TaskStateCompleted {
		t.Errorf("expected completed state, got %s", last.State)
	}
	if !strings.Contains(last.Content, "Hello, world.") {
		t.Errorf("expected accumulated response in final update, got %q", last.Content)
	}
	for _, update := range got[:len(got)-1] {
		if update.State != taskwire.TaskStateWorking {
			t.Errorf("expected intermediate updates to be working, got %s", update.State)
		}
	}
}

func TestAgentErrorScenario(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, &ScriptedGenerator{Chunks: []string{"unused"}})

	got := collect(t, a.Stream(ctx, KindError, "trigger an error"))

	last := got[len(got)-1]
	if last.State != taskwire.TaskStateFailed || !last.Done {
		t.Errorf("expected failed final update, got %+v", last)
	}
	if !strings.Contains(last.Content, "temporarily unavailable") {
		t.Errorf("unexpected failure message: %q", last.Content)
	}
}

func TestAgentCancelScenario(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, &ScriptedGenerator{Chunks: []string{"unused"}})

	got := collect(t, a.Stream(ctx, KindCancel, "cancel this"))

	last := got[len(got)-1]
	if last.State != taskwire.TaskStateCanceled || !last.Done {
		t.Errorf("expected canceled final update, got %+v", last)
	}
	working := 0
	for _, update := range got[:len(got)-1] {
		if update.State == taskwire.TaskStateWorking {
			working++
		}
	}
	if working != 2 {
		t.Errorf("expected 2 working steps before cancellation, got %d", working)
	}
}

func TestAgentInputRequiredScenario(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, &ScriptedGenerator{Chunks: []string{"unused"}})

	got := collect(t, a.Stream(ctx, KindInputRequired, "I need input"))

	last := got[len(got)-1]
	if !last.RequireInput {
		t.Error("expected final update to require input")
	}
	if last.State != taskwire.TaskStateInputRequired {
		t.Errorf("expected input-required state, got %s", last.State)
	}
	if !strings.Contains(last.Content, "preferred timezone") {
		t.Errorf("expected input prompt in final update, got %q", last.Content)
	}
}

func TestAgentLongRunningScenario(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, &ScriptedGenerator{Chunks: []string{"report"}})

	got := collect(t, a.Stream(ctx, KindLongRunning, "long job"))

	var steps []string
	for _, update := range got {
		if strings.HasPrefix(update.Content, "Step ") {
			steps = append(steps, update.Content)
		}
	}
	if len(steps) != 6 {
		t.Fatalf("expected 6 progress steps, got %d", len(steps))
	}
	if !strings.Contains(steps[0], "Initializing task...") {
		t.Errorf("unexpected first step: %q", steps[0])
	}
	if !strings.Contains(steps[5], "Finalizing output...") {
		t.Errorf("unexpected last step: %q", steps[5])
	}

	last := got[len(got)-1]
	if last.State != taskwire.TaskStateCompleted || !last.Done {
		t.Errorf("expected completed final update, got %+v", last)
	}
}

func TestAgentGeneratorFailure(t *testing.T) {
	ctx := context.Background()
	a := newTestAgent(t, &ScriptedGenerator{Err: errors.New("model unavailable")})

	got := collect(t, a.Stream(ctx, KindText, "say hello"))

	last := got[len(got)-1]
	if last.State != taskwire.TaskStateFailed || !last.Done {
		t.Errorf("expected failed final update, got %+v", last)
	}
	if !strings.Contains(last.Content, "model unavailable") {
		t.Errorf("expected generator error in message, got %q", last.Content)
	}
}

func TestAgentStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAgent(t, &ScriptedGenerator{Chunks: []string{"never"}})
	updates := a.Stream(ctx, KindLongRunning, "long job")

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("scenario did not stop after context cancel")
		}
	}
}
