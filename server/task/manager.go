// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskwire/taskwire"
	"github.com/taskwire/taskwire/server/event"
)

// Manager owns the task record for one request execution. It loads or
// synthesizes the record, folds lifecycle events into it, and persists every
// mutation. All record mutation goes through a Manager; nothing else writes
// task state.
type Manager struct {
	taskID         string
	contextID      string
	store          Store
	initialMessage *taskwire.Message
	logger         *slog.Logger

	mu   sync.Mutex
	task *taskwire.Task
}

// ManagerConfig holds configuration for creating a Manager.
type ManagerConfig struct {
	// TaskID is the ID of the task the manager owns. Empty means the task
	// does not exist yet and will be synthesized from InitialMessage.
	TaskID    string
	ContextID string
	Store     Store

	// InitialMessage is the message that triggered this execution. It seeds
	// the record when the task ID is unknown and is appended to history when
	// an input-required task resumes.
	InitialMessage *taskwire.Message

	Logger *slog.Logger
}

// NewManager creates a Manager.
func NewManager(config ManagerConfig) (*Manager, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if config.TaskID == "" && config.InitialMessage == nil {
		return nil, fmt.Errorf("either task ID or initial message is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		taskID:         config.TaskID,
		contextID:      config.ContextID,
		store:          config.Store,
		initialMessage: config.InitialMessage,
		logger:         logger,
	}, nil
}

// TaskID returns the ID of the managed task. It is empty until Ensure has
// synthesized a record for an unknown ID.
func (m *Manager) TaskID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taskID
}

// ContextID returns the context ID of the managed task.
func (m *Manager) ContextID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contextID
}

// Get returns the current task record, loading it from the store on first
// use. The returned record is the manager's working copy; callers must not
// mutate it.
func (m *Manager) Get(ctx context.Context) (*taskwire.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(ctx)
}

// Ensure guarantees a task record exists, synthesizing one from the initial
// message when the task ID is unknown. Synthesis happens exactly once per
// task ID: a record created here is persisted before Ensure returns, so a
// later lookup finds it instead of creating a duplicate. The second return
// value reports whether a record was created by this call.
//
// When an existing record is found in the input-required state, the initial
// message is appended to its history; this is the resume path.
func (m *Manager) Ensure(ctx context.Context) (*taskwire.Task, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, err := m.loadLocked(ctx)
	if err == nil {
		if task.Status.State == taskwire.TaskStateInputRequired && m.initialMessage != nil {
			task.History = append(task.History, m.initialMessage)
			task.UpdatedAt = time.Now().UTC()
			if err := m.store.Save(ctx, task); err != nil {
				return nil, false, err
			}
		}
		return task, false, nil
	}
	var notFound taskwire.TaskNotFoundError
	if !errors.As(err, &notFound) {
		return nil, false, err
	}
	if m.initialMessage == nil {
		return nil, false, err
	}

	task, err = taskwire.NewTask(m.initialMessage)
	if err != nil {
		return nil, false, err
	}
	if err := m.store.Save(ctx, task); err != nil {
		return nil, false, err
	}

	m.logger.InfoContext(ctx, "created new task",
		slog.String("task_id", task.ID), slog.String("context_id", task.ContextID))
	m.task = task
	m.taskID = task.ID
	m.contextID = task.ContextID
	return task, true, nil
}

// Process folds an event into the task record and persists the result.
//
// Events targeting a task already in a terminal state are dropped with a
// diagnostic; the record is never mutated after it settles. Store failures
// surface to the caller unwrapped in a StoreError.
func (m *Manager) Process(ctx context.Context, ev event.Event) error {
	if ev == nil {
		return fmt.Errorf("event cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Always fold into the freshest stored record: the cancellation path may
	// have settled the task from another goroutine since our last load.
	task, err := m.reloadLocked(ctx)
	if err != nil {
		return err
	}

	if task.Status.State.IsTerminal() {
		m.logger.WarnContext(ctx, "dropping event for task in terminal state",
			slog.String("task_id", task.ID),
			slog.String("state", string(task.Status.State)),
			slog.String("event_kind", string(ev.GetKind())))
		return nil
	}

	switch e := ev.(type) {
	case *event.StatusUpdateEvent:
		if !task.Status.State.CanTransitionTo(e.Status.State) {
			return fmt.Errorf("invalid transition from %s to %s for task %s",
				task.Status.State, e.Status.State, task.ID)
		}
		task.Status = e.Status
	case *event.ArtifactUpdateEvent:
		if e.Artifact == nil {
			return fmt.Errorf("artifact update event carries no artifact")
		}
		taskwire.ApplyArtifact(ctx, task, e.Artifact, e.Append, e.LastChunk)
	default:
		return fmt.Errorf("unsupported event kind %q", ev.GetKind())
	}

	task.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, task); err != nil {
		return err
	}
	return nil
}

// loadLocked returns the cached working copy or fetches it from the store.
// Callers hold m.mu.
func (m *Manager) loadLocked(ctx context.Context) (*taskwire.Task, error) {
	if m.task != nil {
		return m.task, nil
	}
	return m.reloadLocked(ctx)
}

// reloadLocked fetches the record from the store, replacing the cached copy.
// Callers hold m.mu.
func (m *Manager) reloadLocked(ctx context.Context) (*taskwire.Task, error) {
	if m.taskID == "" {
		return nil, taskwire.TaskNotFoundError{TaskID: ""}
	}
	task, err := m.store.Get(ctx, m.taskID)
	if err != nil {
		return nil, err
	}
	m.task = task
	m.contextID = task.ContextID
	return task, nil
}
