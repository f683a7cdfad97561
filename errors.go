// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package taskwire

import "fmt"

// Error codes for the task lifecycle protocol. The negative values follow
// the JSON-RPC 2.0 reserved range; the -32000 block carries the A2A task
// errors.
const (
	ErrorCodeTaskNotFound      = -32001
	ErrorCodeTaskNotCancelable = -32002
	ErrorCodeJSONParse         = -32700
	ErrorCodeInvalidRequest    = -32600
	ErrorCodeMethodNotFound    = -32601
	ErrorCodeInvalidParams     = -32602
	ErrorCodeInternalError     = -32603
)

// ProtocolError is an error that carries a protocol error code, surfaced to
// clients as a structured error object rather than an unhandled fault.
type ProtocolError interface {
	error
	Code() int
}

// TaskNotFoundError indicates the requested task ID is absent from the store.
type TaskNotFoundError struct {
	TaskID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// Code returns the protocol error code.
func (e TaskNotFoundError) Code() int { return ErrorCodeTaskNotFound }

// TaskNotCancelableError indicates a cancel request targeted a task that is
// already in a terminal state.
type TaskNotCancelableError struct {
	TaskID string
	State  TaskState
}

func (e TaskNotCancelableError) Error() string {
	return fmt.Sprintf("task %s in state %s cannot be canceled", e.TaskID, e.State)
}

// Code returns the protocol error code.
func (e TaskNotCancelableError) Code() int { return ErrorCodeTaskNotCancelable }

// InvalidRequestError indicates a malformed protocol request.
type InvalidRequestError struct {
	Msg string
}

func (e InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Msg)
}

// Code returns the protocol error code.
func (e InvalidRequestError) Code() int { return ErrorCodeInvalidRequest }

// InvalidParamsError indicates request parameters that fail validation.
type InvalidParamsError struct {
	Msg string
}

func (e InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid params: %s", e.Msg)
}

// Code returns the protocol error code.
func (e InvalidParamsError) Code() int { return ErrorCodeInvalidParams }

// MethodNotFoundError indicates an unknown protocol method.
type MethodNotFoundError struct {
	Method string
}

func (e MethodNotFoundError) Error() string {
	return fmt.Sprintf("method not found: %s", e.Method)
}

// Code returns the protocol error code.
func (e MethodNotFoundError) Code() int { return ErrorCodeMethodNotFound }

// InternalError indicates a server-side failure that could not be mapped to
// a more specific protocol error.
type InternalError struct {
	Msg string
}

func (e InternalError) Error() string {
	return fmt.Sprintf("internal error: %s", e.Msg)
}

// Code returns the protocol error code.
func (e InternalError) Code() int { return ErrorCodeInternalError }
