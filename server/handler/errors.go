// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package handler

import (
	"errors"

	"github.com/taskwire/taskwire"
)

// Error is the JSON-RPC error object returned for failed requests.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitzero"`
}

func (e *Error) Error() string { return e.Message }

// newError builds the wire error for a failure. Protocol errors keep their
// code and message; anything else is reported as an internal error without
// leaking its details.
func newError(err error) *Error {
	var perr taskwire.ProtocolError
	if errors.As(err, &perr) {
		return &Error{Code: perr.Code(), Message: perr.Error()}
	}
	return &Error{Code: taskwire.ErrorCodeInternalError, Message: "internal error"}
}
