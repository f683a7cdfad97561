// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package execution

import (
	"fmt"

	"github.com/taskwire/taskwire"
)

// RequestContext carries one incoming request into the executor: the message
// that triggered it and the task record it operates on.
type RequestContext struct {
	TaskID    string
	ContextID string

	// Message is the triggering client message.
	Message *taskwire.Message

	// Task is the record the execution operates on, already created or
	// resumed by the coordinator.
	Task *taskwire.Task
}

// NewRequestContext builds a RequestContext for a message and its task.
func NewRequestContext(message *taskwire.Message, task *taskwire.Task) (*RequestContext, error) {
	if message == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}
	if task == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	return &RequestContext{
		TaskID:    task.ID,
		ContextID: task.ContextID,
		Message:   message,
		Task:      task,
	}, nil
}

// UserInput returns the joined text content of the triggering message.
func (rc *RequestContext) UserInput() string {
	return rc.Message.TextContent()
}
