// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/taskwire/taskwire"
	"github.com/taskwire/taskwire/server/event"
)

// Stream result kinds. The task snapshot opens every stream; update events
// follow in queue order.
const (
	streamKindTask = "task"
)

// handleStream serves message/stream: it starts the execution and relays
// its event tap to the client as Server-Sent Events. Each SSE data frame is
// a complete JSON-RPC response whose result is the task snapshot or one
// update event.
func (h *JSONRPCHandler) handleStream(w http.ResponseWriter, r *http.Request, req *Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	params, err := parseMessageParams(req.Params)
	if err != nil {
		h.writeError(w, req.ID, err)
		return
	}

	exec, err := h.coordinator.Execute(r.Context(), params.Message)
	if err != nil {
		h.writeError(w, req.ID, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Open with the current task snapshot so the client knows the task and
	// context IDs before any update arrives.
	t, err := h.store.Get(r.Context(), exec.TaskID())
	if err == nil {
		h.writeStreamResult(w, flusher, req.ID, struct {
			Kind string `json:"kind"`
			*taskwire.Task
		}{streamKindTask, t})
	}

	tap := exec.Events()
	if tap == nil {
		// The task was already settled; the snapshot is the whole stream.
		return
	}

	consumer := event.NewConsumer(tap)
	for ev := range consumer.ConsumeAll(r.Context()) {
		h.writeStreamResult(w, flusher, req.ID, streamPayload(ev))
	}
}

// streamPayload wraps an event with its kind discriminator for the wire.
func streamPayload(ev event.Event) any {
	switch e := ev.(type) {
	case *event.StatusUpdateEvent:
		return struct {
			Kind event.Kind `json:"kind"`
			*event.StatusUpdateEvent
		}{event.KindStatusUpdate, e}
	case *event.ArtifactUpdateEvent:
		return struct {
			Kind event.Kind `json:"kind"`
			*event.ArtifactUpdateEvent
		}{event.KindArtifactUpdate, e}
	default:
		return ev
	}
}

func (h *JSONRPCHandler) writeStreamResult(w http.ResponseWriter, flusher http.Flusher, id jsontext.Value, result any) {
	data, err := json.Marshal(&Response{JSONRPC: "2.0", ID: id, Result: result})
	if err != nil {
		h.logger.Error("failed to encode stream event")
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
