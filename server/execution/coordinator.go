// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskwire/taskwire"
	"github.com/taskwire/taskwire/server/event"
	"github.com/taskwire/taskwire/server/push"
	"github.com/taskwire/taskwire/server/task"
)

// Coordinator drives one execution per incoming message: it creates or
// resumes the task record, starts the agent executor, and folds the event
// stream back into the record until a final event settles the session.
type Coordinator struct {
	executor AgentExecutor
	store    task.Store
	queues   event.QueueManager
	cancels  *Registry
	notifier push.Sender
	logger   *slog.Logger

	// mu guards sessions, the live execution per task ID. A message
	// addressing a task with a live session attaches to it instead of
	// starting a competing executor on the same queue.
	mu       sync.Mutex
	sessions map[string]*session
}

// session is the shared state of one live execution.
type session struct {
	queue *event.Queue
	done  chan struct{}
}

// CoordinatorConfig holds configuration for creating a Coordinator.
type CoordinatorConfig struct {
	Executor AgentExecutor
	Store    task.Store
	Queues   event.QueueManager

	// Notifier, when set, receives the task record every time a session
	// settles so registered webhooks are informed.
	Notifier push.Sender

	Logger *slog.Logger
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(config CoordinatorConfig) (*Coordinator, error) {
	if config.Executor == nil {
		return nil, fmt.Errorf("executor cannot be nil")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if config.Queues == nil {
		return nil, fmt.Errorf("queue manager cannot be nil")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		executor: config.Executor,
		store:    config.Store,
		queues:   config.Queues,
		cancels:  NewRegistry(),
		notifier: config.Notifier,
		logger:   logger,
		sessions: make(map[string]*session),
	}, nil
}

// Execution is a handle on one running (or already settled) execution.
type Execution struct {
	taskID    string
	contextID string
	store     task.Store

	// events is a tap receiving a copy of every event of the session; nil
	// when the execution settled without running.
	events *event.Queue

	done chan struct{}

	mu  sync.Mutex
	err error
}

// TaskID returns the ID of the task being executed.
func (x *Execution) TaskID() string { return x.taskID }

// ContextID returns the context ID of the task being executed.
func (x *Execution) ContextID() string { return x.contextID }

// Events returns the event tap for this execution, or nil when the request
// settled immediately without running the agent.
func (x *Execution) Events() *event.Queue { return x.events }

// Done returns a channel closed when the execution has settled.
func (x *Execution) Done() <-chan struct{} { return x.done }

// Wait blocks until the execution settles or the context is canceled, then
// returns the task record as stored.
func (x *Execution) Wait(ctx context.Context) (*taskwire.Task, error) {
	select {
	case <-x.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	x.mu.Lock()
	err := x.err
	x.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return x.store.Get(ctx, x.taskID)
}

func (x *Execution) setErr(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.err == nil {
		x.err = err
	}
}

// Execute handles an incoming message. It ensures the task record exists,
// starts the agent executor in the background, and returns a handle whose
// event tap observes the session.
//
// A message addressing a task already in a terminal state starts no new
// work: the returned execution is settled immediately and carries the stored
// record, leaving it byte-for-byte untouched.
func (c *Coordinator) Execute(ctx context.Context, message *taskwire.Message) (*Execution, error) {
	if message == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}

	manager, err := task.NewManager(task.ManagerConfig{
		TaskID:         message.TaskID,
		ContextID:      message.ContextID,
		Store:          c.store,
		InitialMessage: message,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, err
	}

	t, created, err := manager.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	exec := &Execution{
		taskID:    t.ID,
		contextID: t.ContextID,
		store:     c.store,
		done:      make(chan struct{}),
	}

	if t.Status.State.IsTerminal() {
		c.logger.InfoContext(ctx, "message addressed settled task, returning stored record",
			slog.String("task_id", t.ID), slog.String("state", string(t.Status.State)))
		close(exec.done)
		return exec, nil
	}

	// A live session already owns this task's queue; attach the caller as
	// another observer instead of racing a second executor against it.
	c.mu.Lock()
	if s, ok := c.sessions[t.ID]; ok {
		tap, terr := s.queue.Tap()
		if terr == nil {
			c.mu.Unlock()
			c.logger.InfoContext(ctx, "message addressed running task, attaching to live session",
				slog.String("task_id", t.ID))
			exec.events = tap
			exec.done = s.done
			return exec, nil
		}
		// The session is tearing down and its queue is already closed;
		// start fresh below.
	}

	queue, err := c.queues.Get(t.ID)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	tap, err := queue.Tap()
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	exec.events = tap
	s := &session{queue: queue, done: exec.done}
	c.sessions[t.ID] = s
	c.mu.Unlock()

	// The execution outlives the request that started it; only an explicit
	// cancellation stops it.
	execCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancels.Register(t.ID, cancel)

	if created {
		submitted := taskwire.TaskStatus{State: taskwire.TaskStateSubmitted}
		if err := queue.Enqueue(execCtx, event.NewStatusUpdate(t.ID, t.ContextID, submitted, false)); err != nil {
			c.cancels.Unregister(t.ID)
			cancel()
			c.dropSession(t.ID, s)
			return nil, err
		}
	}

	reqCtx, err := NewRequestContext(message, t)
	if err != nil {
		c.cancels.Unregister(t.ID)
		cancel()
		c.dropSession(t.ID, s)
		return nil, err
	}

	go func() {
		if err := c.executor.Execute(execCtx, reqCtx, queue); err != nil {
			c.logger.ErrorContext(execCtx, "executor failed",
				slog.String("task_id", t.ID), slog.Any("error", err))
			// Convert an executor failure into a failed final event so the
			// session always terminates. If a final event already went out
			// the queue is closed and this is a no-op.
			status := taskwire.TaskStatus{
				State:   taskwire.TaskStateFailed,
				Message: err.Error(),
				Final:   true,
			}
			_ = queue.Enqueue(execCtx, event.NewStatusUpdate(t.ID, t.ContextID, status, true))
		}
	}()

	go c.pump(execCtx, cancel, exec, manager, queue, s)

	return exec, nil
}

// dropSession removes the session for a task, but only when it still is the
// given one; a replacement registered meanwhile stays.
func (c *Coordinator) dropSession(taskID string, s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[taskID] == s {
		delete(c.sessions, taskID)
	}
}

// pump folds the session's events into the task record until a final event
// or cancellation ends the session.
func (c *Coordinator) pump(ctx context.Context, cancel context.CancelFunc, exec *Execution, manager *task.Manager, queue *event.Queue, s *session) {
	defer close(exec.done)
	defer cancel()
	defer c.cancels.Unregister(exec.taskID)
	defer c.dropSession(exec.taskID, s)
	defer func() { _ = c.queues.Close(exec.taskID) }()

	consumer := event.NewConsumer(queue)
	for ev := range consumer.ConsumeAll(ctx) {
		if err := manager.Process(ctx, ev); err != nil {
			c.logger.ErrorContext(ctx, "failed to apply event to task record",
				slog.String("task_id", exec.taskID),
				slog.String("event_kind", string(ev.GetKind())),
				slog.Any("error", err))
			exec.setErr(err)
			return
		}
	}

	c.notify(exec.taskID)
}

// notify delivers the settled record to registered webhooks. The session
// context may already be canceled, so delivery runs on its own deadline.
func (c *Coordinator) notify(taskID string) {
	if c.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t, err := c.store.Get(ctx, taskID)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to load task for push notification",
			slog.String("task_id", taskID), slog.Any("error", err))
		return
	}
	if !t.Status.State.IsTerminal() && t.Status.State != taskwire.TaskStateInputRequired {
		return
	}
	if err := c.notifier.SendTaskNotification(ctx, t); err != nil {
		c.logger.ErrorContext(ctx, "push notification delivery failed",
			slog.String("task_id", taskID), slog.Any("error", err))
	}
}

// Cancel cancels a task. The stored record moves to the canceled state, any
// running execution is stopped, and stream observers receive the canceled
// final event. Canceling an unknown task returns TaskNotFoundError;
// canceling a settled task returns TaskNotCancelableError.
func (c *Coordinator) Cancel(ctx context.Context, taskID string) (*taskwire.Task, error) {
	t, err := c.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status.State.IsTerminal() {
		return nil, taskwire.TaskNotCancelableError{TaskID: taskID, State: t.Status.State}
	}

	c.cancels.Cancel(taskID)

	status := taskwire.TaskStatus{
		State:   taskwire.TaskStateCanceled,
		Message: "Task canceled by user request",
		Final:   true,
	}
	ev := event.NewStatusUpdate(t.ID, t.ContextID, status, true)

	manager, err := task.NewManager(task.ManagerConfig{
		TaskID: taskID,
		Store:  c.store,
		Logger: c.logger,
	})
	if err != nil {
		return nil, err
	}
	if err := manager.Process(ctx, ev); err != nil {
		return nil, err
	}

	// Deliver the final event to any stream observers, then retire the
	// queue. The running pump may have exited already; both steps tolerate
	// that.
	if queue, qerr := c.queues.Get(taskID); qerr == nil {
		_ = queue.Enqueue(ctx, ev)
	}
	_ = c.queues.Close(taskID)

	c.notify(taskID)

	c.logger.InfoContext(ctx, "task canceled", slog.String("task_id", taskID))
	return c.store.Get(ctx, taskID)
}

// Get returns the stored record for a task.
func (c *Coordinator) Get(ctx context.Context, taskID string) (*taskwire.Task, error) {
	return c.store.Get(ctx, taskID)
}
