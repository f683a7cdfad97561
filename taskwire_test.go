// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package taskwire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTaskStateIsTerminal(t *testing.T) {
	terminal := []TaskState{TaskStateCompleted, TaskStateCanceled, TaskStateFailed}
	for _, state := range terminal {
		if !state.IsTerminal() {
			t.Errorf("expected %s to be terminal", state)
		}
	}

	nonTerminal := []TaskState{TaskStateSubmitted, TaskStateWorking, TaskStateInputRequired}
	for _, state := range nonTerminal {
		if state.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", state)
		}
	}
}

func TestTaskStateCanTransitionTo(t *testing.T) {
	testCases := []struct {
		name string
		from TaskState
		to   TaskState
		want bool
	}{
		{"submitted to working", TaskStateSubmitted, TaskStateWorking, true},
		{"working to completed", TaskStateWorking, TaskStateCompleted, true},
		{"working to input required", TaskStateWorking, TaskStateInputRequired, true},
		{"input required resumes to working", TaskStateInputRequired, TaskStateWorking, true},
		{"completed accepts nothing", TaskStateCompleted, TaskStateWorking, false},
		{"canceled accepts nothing", TaskStateCanceled, TaskStateCompleted, false},
		{"failed accepts nothing", TaskStateFailed, TaskStateWorking, false},
		{"invalid target state", TaskStateWorking, TaskState("bogus"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestNewTaskGeneratesIDs(t *testing.T) {
	message, err := NewUserTextMessage("hello", "", "")
	if err != nil {
		t.Fatalf("NewUserTextMessage failed: %v", err)
	}

	task, err := NewTask(message)
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}

	if task.ID == "" {
		t.Error("expected generated task ID")
	}
	if task.ContextID == "" {
		t.Error("expected generated context ID")
	}
	if task.Status.State != TaskStateSubmitted {
		t.Errorf("expected submitted state, got %s", task.Status.State)
	}
	if len(task.History) != 1 {
		t.Fatalf("expected 1 history message, got %d", len(task.History))
	}
	if task.History[0].MessageID != message.MessageID {
		t.Error("expected triggering message in history")
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestNewTaskAdoptsMessageIDs(t *testing.T) {
	message, err := NewUserTextMessage("hello", "task-1", "ctx-1")
	if err != nil {
		t.Fatalf("NewUserTextMessage failed: %v", err)
	}

	task, err := NewTask(message)
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}

	if task.ID != "task-1" {
		t.Errorf("expected adopted task ID task-1, got %s", task.ID)
	}
	if task.ContextID != "ctx-1" {
		t.Errorf("expected adopted context ID ctx-1, got %s", task.ContextID)
	}
}

func TestNewTaskRejectsInvalidMessage(t *testing.T) {
	if _, err := NewTask(nil); err == nil {
		t.Error("expected error for nil message")
	}

	invalid := &Message{Role: RoleUser, MessageID: "m-1"}
	if _, err := NewTask(invalid); err == nil {
		t.Error("expected error for message without parts")
	}
}

func TestTaskCloneIsIndependent(t *testing.T) {
	message, err := NewUserTextMessage("hello", "task-1", "ctx-1")
	if err != nil {
		t.Fatalf("NewUserTextMessage failed: %v", err)
	}
	task, err := NewTask(message)
	if err != nil {
		t.Fatalf("NewTask failed: %v", err)
	}
	artifact, err := NewTextArtifact("result", "partial", "")
	if err != nil {
		t.Fatalf("NewTextArtifact failed: %v", err)
	}
	task.Artifacts = append(task.Artifacts, artifact)

	clone := task.Clone()
	if diff := cmp.Diff(task, clone); diff != "" {
		t.Fatalf("clone mismatch (-want +got):\n%s", diff)
	}

	clone.Status.State = TaskStateCompleted
	clone.Artifacts[0].Text = "mutated"
	clone.History[0].Parts[0].Text = "mutated"

	if task.Status.State != TaskStateSubmitted {
		t.Error("mutating clone status affected original")
	}
	if task.Artifacts[0].Text != "partial" {
		t.Error("mutating clone artifact affected original")
	}
	if task.History[0].Parts[0].Text != "hello" {
		t.Error("mutating clone history affected original")
	}
}

func TestTaskValidate(t *testing.T) {
	task := &Task{
		ID:     "task-1",
		Status: TaskStatus{State: TaskStateWorking},
	}
	if err := task.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	task.ID = ""
	if err := task.Validate(); err == nil {
		t.Error("expected error for empty task ID")
	}

	task.ID = "task-1"
	task.Status.State = TaskState("bogus")
	if err := task.Validate(); err == nil {
		t.Error("expected error for invalid state")
	}
}
