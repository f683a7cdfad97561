// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package execution coordinates request handling: it routes each incoming
// message to an agent executor, folds the resulting event stream into the
// task record, and manages cancellation of running executions.
package execution

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskwire/taskwire"
	"github.com/taskwire/taskwire/server/agent"
	"github.com/taskwire/taskwire/server/event"
	"github.com/taskwire/taskwire/server/task"
)

// AgentExecutor runs agent logic for one request, publishing status and
// artifact events to the queue as it goes.
type AgentExecutor interface {
	// Execute processes the request and emits events until a final event
	// closes the stream session. Returning an error without having emitted a
	// final event causes the coordinator to fail the task.
	Execute(ctx context.Context, reqCtx *RequestContext, queue *event.Queue) error

	// Cancel performs executor-specific cleanup for a cancellation request.
	Cancel(ctx context.Context, reqCtx *RequestContext, queue *event.Queue) error
}

// Executor adapts the demo agent to the AgentExecutor contract. It
// classifies the request once, acknowledges file and form submissions with
// input artifacts, streams agent updates as status events, and closes every
// successful run with a result artifact marked as the last chunk.
type Executor struct {
	agent  *agent.Agent
	logger *slog.Logger
}

var _ AgentExecutor = (*Executor)(nil)

// NewExecutor creates an Executor around the given agent.
func NewExecutor(a *agent.Agent, logger *slog.Logger) (*Executor, error) {
	if a == nil {
		return nil, fmt.Errorf("agent cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{agent: a, logger: logger}, nil
}

// Execute runs the scenario selected for the request.
func (e *Executor) Execute(ctx context.Context, reqCtx *RequestContext, queue *event.Queue) error {
	updater, err := task.NewUpdater(reqCtx.TaskID, reqCtx.ContextID, queue)
	if err != nil {
		return err
	}

	kind := Classify(reqCtx.Message)
	e.logger.InfoContext(ctx, "executing request",
		slog.String("task_id", reqCtx.TaskID), slog.String("scenario", string(kind)))

	if err := e.acknowledgeInput(ctx, reqCtx, updater, kind); err != nil {
		return err
	}

	for update := range e.agent.Stream(ctx, kind, reqCtx.UserInput()) {
		switch {
		case update.Done:
			if update.State == taskwire.TaskStateCompleted {
				artifact, err := taskwire.NewTextArtifact(
					resultArtifactName(kind), update.Content, resultArtifactDescription(kind))
				if err != nil {
					return err
				}
				if err := updater.AddArtifact(ctx, artifact, false, true); err != nil {
					return err
				}
			}
			return updater.UpdateStatus(ctx, update.State, update.Content, true)

		case update.RequireInput:
			return updater.RequiresInput(ctx, update.Content)

		default:
			if err := updater.UpdateStatus(ctx, update.State, update.Content, false); err != nil {
				return err
			}
		}
	}

	// The agent stream ended without a final update; the context was
	// canceled out from under it.
	return ctx.Err()
}

// Cancel emits the canceled final status for the task.
func (e *Executor) Cancel(ctx context.Context, reqCtx *RequestContext, queue *event.Queue) error {
	status := taskwire.TaskStatus{
		State:   taskwire.TaskStateCanceled,
		Message: "Task canceled by user request",
		Final:   true,
	}
	return queue.Enqueue(ctx, event.NewStatusUpdate(reqCtx.TaskID, reqCtx.ContextID, status, true))
}

// acknowledgeInput records the received file or form payload as an input
// artifact before the scenario runs, so the client can see what the agent is
// operating on.
func (e *Executor) acknowledgeInput(ctx context.Context, reqCtx *RequestContext, updater *task.Updater, kind agent.Kind) error {
	switch kind {
	case agent.KindFile:
		file := reqCtx.Message.FilePart()
		if file == nil {
			return nil
		}
		content, err := file.Decode()
		if err != nil {
			return fmt.Errorf("decode input file: %w", err)
		}
		note := fmt.Sprintf("Received file content (%d characters). Processing...", len(content))
		if err := updater.StartWork(ctx, note); err != nil {
			return err
		}
		artifact, err := taskwire.NewFileArtifact("input_file",
			&taskwire.FileContent{Name: file.Name, MIMEType: file.MIMEType, Bytes: content},
			"Input file content for processing.")
		if err != nil {
			return err
		}
		return updater.AddArtifact(ctx, artifact, false, false)

	case agent.KindData:
		data := reqCtx.Message.DataPart()
		if data == nil {
			return nil
		}
		if err := updater.StartWork(ctx, "Received structured data. Processing form..."); err != nil {
			return err
		}
		artifact, err := taskwire.NewDataArtifact("input_form_data", data,
			"Input form data for processing.")
		if err != nil {
			return err
		}
		return updater.AddArtifact(ctx, artifact, false, false)
	}
	return nil
}

func resultArtifactName(kind agent.Kind) string {
	switch kind {
	case agent.KindFile:
		return "file_analysis_result"
	case agent.KindData:
		return "form_processing_result"
	default:
		return "final_result"
	}
}

func resultArtifactDescription(kind agent.Kind) string {
	switch kind {
	case agent.KindFile:
		return "Analysis result of the input file."
	case agent.KindData:
		return "Result of form data processing."
	default:
		return "Final result of the request."
	}
}
