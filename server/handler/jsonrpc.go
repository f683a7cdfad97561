// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package handler exposes the task lifecycle protocol over JSON-RPC 2.0 with
// Server-Sent Events for the streaming method.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/taskwire/taskwire"
	"github.com/taskwire/taskwire/server/execution"
	"github.com/taskwire/taskwire/server/push"
	"github.com/taskwire/taskwire/server/task"
)

// Protocol method names.
const (
	MethodMessageSend   = "message/send"
	MethodMessageStream = "message/stream"
	MethodTasksGet      = "tasks/get"
	MethodTasksCancel   = "tasks/cancel"
	MethodTasksList     = "tasks/list"
	MethodTasksClear    = "tasks/clear"
	MethodPushConfigSet = "tasks/pushNotificationConfig/set"
	MethodPushConfigGet = "tasks/pushNotificationConfig/get"
)

// Request is an incoming JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      jsontext.Value `json:"id,omitzero"`
	Method  string         `json:"method"`
	Params  jsontext.Value `json:"params,omitzero"`
}

// Response is an outgoing JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      jsontext.Value `json:"id,omitzero"`
	Result  any            `json:"result,omitzero"`
	Error   *Error         `json:"error,omitzero"`
}

// MessageSendParams are the params of message/send and message/stream.
type MessageSendParams struct {
	Message *taskwire.Message `json:"message"`
}

// TaskIDParams address a single task by ID.
type TaskIDParams struct {
	ID string `json:"id"`
}

// PushConfigParams are the params of tasks/pushNotificationConfig/set.
type PushConfigParams struct {
	TaskID string       `json:"task_id"`
	Config *push.Config `json:"config"`
}

// PushConfigResult is the result of the push notification config methods.
type PushConfigResult struct {
	TaskID string       `json:"task_id"`
	Config *push.Config `json:"config"`
}

// TaskListResult is the result of tasks/list.
type TaskListResult struct {
	IDs []string `json:"ids"`
}

// JSONRPCHandler serves the protocol over a single HTTP endpoint.
type JSONRPCHandler struct {
	coordinator *execution.Coordinator
	store       task.Store
	pushConfigs push.ConfigStore
	logger      *slog.Logger
}

// JSONRPCHandlerConfig holds configuration for creating a JSONRPCHandler.
type JSONRPCHandlerConfig struct {
	Coordinator *execution.Coordinator
	Store       task.Store
	PushConfigs push.ConfigStore
	Logger      *slog.Logger
}

// NewJSONRPCHandler creates a JSONRPCHandler.
func NewJSONRPCHandler(config JSONRPCHandlerConfig) (*JSONRPCHandler, error) {
	if config.Coordinator == nil {
		return nil, fmt.Errorf("coordinator cannot be nil")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if config.PushConfigs == nil {
		return nil, fmt.Errorf("push config store cannot be nil")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONRPCHandler{
		coordinator: config.Coordinator,
		store:       config.Store,
		pushConfigs: config.PushConfigs,
		logger:      logger,
	}, nil
}

// ServeHTTP implements http.Handler.
func (h *JSONRPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		h.writeResponse(w, &Response{
			JSONRPC: "2.0",
			Error:   &Error{Code: taskwire.ErrorCodeJSONParse, Message: "failed to parse request"},
		})
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		h.writeError(w, req.ID, taskwire.InvalidRequestError{Msg: "jsonrpc version and method are required"})
		return
	}

	h.logger.InfoContext(r.Context(), "handling request", slog.String("method", req.Method))

	if req.Method == MethodMessageStream {
		h.handleStream(w, r, &req)
		return
	}

	result, err := h.dispatch(r.Context(), &req)
	if err != nil {
		h.writeError(w, req.ID, err)
		return
	}
	h.writeResponse(w, &Response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (h *JSONRPCHandler) dispatch(ctx context.Context, req *Request) (any, error) {
	switch req.Method {
	case MethodMessageSend:
		return h.messageSend(ctx, req.Params)
	case MethodTasksGet:
		return h.tasksGet(ctx, req.Params)
	case MethodTasksCancel:
		return h.tasksCancel(ctx, req.Params)
	case MethodTasksList:
		return h.tasksList(ctx)
	case MethodTasksClear:
		return h.tasksClear(ctx)
	case MethodPushConfigSet:
		return h.pushConfigSet(ctx, req.Params)
	case MethodPushConfigGet:
		return h.pushConfigGet(ctx, req.Params)
	default:
		return nil, taskwire.MethodNotFoundError{Method: req.Method}
	}
}

// messageSend runs an execution to completion and returns the settled task
// record.
func (h *JSONRPCHandler) messageSend(ctx context.Context, raw jsontext.Value) (any, error) {
	params, err := parseMessageParams(raw)
	if err != nil {
		return nil, err
	}

	exec, err := h.coordinator.Execute(ctx, params.Message)
	if err != nil {
		return nil, err
	}
	t, err := exec.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (h *JSONRPCHandler) tasksGet(ctx context.Context, raw jsontext.Value) (any, error) {
	params, err := parseTaskIDParams(raw)
	if err != nil {
		return nil, err
	}
	return h.store.Get(ctx, params.ID)
}

func (h *JSONRPCHandler) tasksCancel(ctx context.Context, raw jsontext.Value) (any, error) {
	params, err := parseTaskIDParams(raw)
	if err != nil {
		return nil, err
	}
	return h.coordinator.Cancel(ctx, params.ID)
}

func (h *JSONRPCHandler) tasksList(ctx context.Context) (any, error) {
	lister, ok := h.store.(task.Lister)
	if !ok {
		return nil, taskwire.MethodNotFoundError{Method: MethodTasksList}
	}
	ids, err := lister.List(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return &TaskListResult{IDs: ids}, nil
}

func (h *JSONRPCHandler) tasksClear(ctx context.Context) (any, error) {
	clearer, ok := h.store.(task.Clearer)
	if !ok {
		return nil, taskwire.MethodNotFoundError{Method: MethodTasksClear}
	}
	if err := clearer.Clear(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"cleared": true}, nil
}

func (h *JSONRPCHandler) pushConfigSet(ctx context.Context, raw jsontext.Value) (any, error) {
	var params PushConfigParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, taskwire.InvalidParamsError{Msg: err.Error()}
	}
	if params.TaskID == "" {
		return nil, taskwire.InvalidParamsError{Msg: "task_id is required"}
	}
	if params.Config == nil {
		return nil, taskwire.InvalidParamsError{Msg: "config is required"}
	}

	// The task must exist before a webhook can be registered for it.
	if _, err := h.store.Get(ctx, params.TaskID); err != nil {
		return nil, err
	}
	if err := h.pushConfigs.Save(ctx, params.TaskID, params.Config); err != nil {
		return nil, taskwire.InvalidParamsError{Msg: err.Error()}
	}
	return &PushConfigResult{TaskID: params.TaskID, Config: params.Config}, nil
}

func (h *JSONRPCHandler) pushConfigGet(ctx context.Context, raw jsontext.Value) (any, error) {
	params, err := parseTaskIDParams(raw)
	if err != nil {
		return nil, err
	}
	config, ok, err := h.pushConfigs.Get(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, taskwire.TaskNotFoundError{TaskID: params.ID}
	}
	return &PushConfigResult{TaskID: params.ID, Config: config}, nil
}

func (h *JSONRPCHandler) writeError(w http.ResponseWriter, id jsontext.Value, err error) {
	h.writeResponse(w, &Response{JSONRPC: "2.0", ID: id, Error: newError(err)})
}

func (h *JSONRPCHandler) writeResponse(w http.ResponseWriter, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.MarshalWrite(w, resp); err != nil {
		h.logger.Error("failed to write response", slog.Any("error", err))
	}
}

func parseMessageParams(raw jsontext.Value) (*MessageSendParams, error) {
	var params MessageSendParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, taskwire.InvalidParamsError{Msg: err.Error()}
	}
	if params.Message == nil {
		return nil, taskwire.InvalidParamsError{Msg: "message is required"}
	}
	if err := params.Message.Validate(); err != nil {
		return nil, taskwire.InvalidParamsError{Msg: err.Error()}
	}
	return &params, nil
}

func parseTaskIDParams(raw jsontext.Value) (*TaskIDParams, error) {
	var params TaskIDParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, taskwire.InvalidParamsError{Msg: err.Error()}
	}
	if params.ID == "" {
		return nil, taskwire.InvalidParamsError{Msg: "task id is required"}
	}
	return &params, nil
}
