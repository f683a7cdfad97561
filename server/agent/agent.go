// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent implements the demo agent behind the task lifecycle server.
// The agent routes each request to one of several scenarios that together
// exercise every task state, content type, and streaming pattern of the
// protocol.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/taskwire/taskwire"
)

// Kind selects the scenario an execution runs.
type Kind string

const (
	// KindText is the default scenario: stream a model response for the
	// request text.
	KindText Kind = "text"
	// KindFile analyzes an uploaded or simulated file.
	KindFile Kind = "file"
	// KindData processes structured form data.
	KindData Kind = "data"
	// KindError fails the task partway through.
	KindError Kind = "error"
	// KindCancel has the agent cancel its own task.
	KindCancel Kind = "cancel"
	// KindInputRequired pauses the task waiting for more input.
	KindInputRequired Kind = "input-required"
	// KindLongRunning works through several progress steps before answering.
	KindLongRunning Kind = "long-running"
)

// Update is one increment of agent output. Content carries streamed text;
// State is the task state the agent wants the task to be in after this
// update.
type Update struct {
	Content      string
	State        taskwire.TaskState
	Done         bool
	RequireInput bool
}

// Agent produces scenario-driven streaming responses.
type Agent struct {
	generator ChunkGenerator
	logger    *slog.Logger

	// stepDelay paces multi-step scenarios. Tests set it to zero.
	stepDelay time.Duration
}

// Option configures an Agent.
type Option func(*Agent)

// WithStepDelay overrides the pause between scenario steps.
func WithStepDelay(d time.Duration) Option {
	return func(a *Agent) { a.stepDelay = d }
}

// WithLogger sets the agent's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates an Agent answering with the given generator.
func New(generator ChunkGenerator, opts ...Option) (*Agent, error) {
	if generator == nil {
		return nil, fmt.Errorf("chunk generator cannot be nil")
	}
	a := &Agent{
		generator: generator,
		logger:    slog.Default(),
		stepDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Stream runs the scenario for kind and returns a channel of updates. The
// channel closes when the scenario finishes or the context is canceled;
// after an update with Done or RequireInput set, no further updates follow.
func (a *Agent) Stream(ctx context.Context, kind Kind, question string) <-chan Update {
	out := make(chan Update)
	go func() {
		defer close(out)
		a.logger.InfoContext(ctx, "agent processing request",
			slog.String("scenario", string(kind)))

		switch kind {
		case KindError:
			a.runError(ctx, out, question)
		case KindCancel:
			a.runCancel(ctx, out, question)
		case KindInputRequired:
			a.runInputRequired(ctx, out, question)
		case KindLongRunning:
			a.runLongRunning(ctx, out, question)
		case KindFile:
			a.runFile(ctx, out, question)
		case KindData:
			a.runData(ctx, out, question)
		default:
			a.runText(ctx, out, question)
		}
	}()
	return out
}

func (a *Agent) runText(ctx context.Context, out chan<- Update, question string) {
	if !a.send(ctx, out, working("Starting to process: "+question)) {
		return
	}
	a.pause(ctx)

	response, ok := a.generate(ctx, out, "Please provide a helpful response to: "+question)
	if !ok {
		return
	}
	a.send(ctx, out, completed("Final response: "+response))
}

func (a *Agent) runFile(ctx context.Context, out chan<- Update, question string) {
	if !a.send(ctx, out, working("Analyzing file content...")) {
		return
	}
	a.pause(ctx)

	const fileContent = "This is a sample file content for demonstration purposes."
	prompt := fmt.Sprintf(
		"Please analyze this file content and provide insights:\n\nFile content:\n%s\n\nUser request: %s",
		fileContent, question)

	response, ok := a.generate(ctx, out, prompt)
	if !ok {
		return
	}
	a.send(ctx, out, completed("File analysis complete: "+response))
}

func (a *Agent) runData(ctx context.Context, out chan<- Update, question string) {
	if !a.send(ctx, out, working("Processing form data...")) {
		return
	}
	a.pause(ctx)

	formData := map[string]any{
		"name":        "Demo User",
		"email":       "demo@example.com",
		"preferences": []string{"option1", "option2"},
	}
	encoded, err := json.Marshal(formData, jsontext.WithIndent("  "))
	if err != nil {
		a.send(ctx, out, failed("Failed to encode form data."))
		return
	}
	prompt := fmt.Sprintf(
		"Please process this form data:\nForm data received:\n%s\n\nUser request: %s",
		encoded, question)

	response, ok := a.generate(ctx, out, prompt)
	if !ok {
		return
	}
	a.send(ctx, out, completed("Form processing complete: "+response))
}

func (a *Agent) runInputRequired(ctx context.Context, out chan<- Update, question string) {
	if !a.send(ctx, out, working("Processing your request: "+question)) {
		return
	}
	a.pause(ctx)

	a.send(ctx, out, Update{
		Content: "I need additional information to complete this task. " +
			"Please provide: 1) Your preferred timezone, 2) Your budget range, 3) Any specific requirements.",
		State:        taskwire.TaskStateInputRequired,
		RequireInput: true,
	})
}

func (a *Agent) runLongRunning(ctx context.Context, out chan<- Update, question string) {
	steps := []string{
		"Initializing task...",
		"Gathering information...",
		"Processing data...",
		"Analyzing results...",
		"Generating report...",
		"Finalizing output...",
	}
	for i, step := range steps {
		if !a.send(ctx, out, working(fmt.Sprintf("Step %d/%d: %s", i+1, len(steps), step))) {
			return
		}
		a.pause(ctx)
	}

	response, ok := a.generate(ctx, out, "Please provide a comprehensive response to: "+question)
	if !ok {
		return
	}
	a.send(ctx, out, completed("Long-running task completed: "+response))
}

func (a *Agent) runError(ctx context.Context, out chan<- Update, question string) {
	if !a.send(ctx, out, working("Starting to process: "+question)) {
		return
	}
	a.pause(ctx)

	a.send(ctx, out, failed(
		"Encountered an error while processing the request. The requested service is temporarily unavailable."))
}

func (a *Agent) runCancel(ctx context.Context, out chan<- Update, question string) {
	if !a.send(ctx, out, working("Starting to process: "+question)) {
		return
	}
	a.pause(ctx)

	if !a.send(ctx, out, working("Task is being processed...")) {
		return
	}
	a.pause(ctx)

	a.send(ctx, out, Update{
		Content: "Task has been cancelled by the user.",
		State:   taskwire.TaskStateCanceled,
		Done:    true,
	})
}

// generate streams model chunks as working updates and returns the
// accumulated text. A generation failure is reported as a failed update; the
// second return value is false when the scenario should stop.
func (a *Agent) generate(ctx context.Context, out chan<- Update, prompt string) (string, bool) {
	chunks, err := a.generator.Stream(ctx, prompt)
	if err != nil {
		a.send(ctx, out, failed("Model request failed: "+err.Error()))
		return "", false
	}

	var response string
	for chunk := range chunks {
		if chunk.Err != nil {
			a.logger.ErrorContext(ctx, "model stream failed", slog.Any("error", chunk.Err))
			a.send(ctx, out, failed("Model request failed: "+chunk.Err.Error()))
			return "", false
		}
		response += chunk.Text
		if !a.send(ctx, out, working(chunk.Text)) {
			return "", false
		}
	}
	return response, true
}

func (a *Agent) send(ctx context.Context, out chan<- Update, update Update) bool {
	select {
	case out <- update:
		return true
	case <-ctx.Done():
		return false
	}
}

func (a *Agent) pause(ctx context.Context) {
	if a.stepDelay <= 0 {
		return
	}
	select {
	case <-time.After(a.stepDelay):
	case <-ctx.Done():
	}
}

func working(content string) Update {
	return Update{Content: content, State: taskwire.TaskStateWorking}
}

func completed(content string) Update {
	return Update{Content: content, State: taskwire.TaskStateCompleted, Done: true}
}

func failed(content string) Update {
	return Update{Content: content, State: taskwire.TaskStateFailed, Done: true}
}
