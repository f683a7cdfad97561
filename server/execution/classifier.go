// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package execution

import (
	"strings"

	"github.com/taskwire/taskwire"
	"github.com/taskwire/taskwire/server/agent"
)

// Classify determines the scenario for a request message. Classification
// happens exactly once per request; the result is threaded through the
// execution instead of re-inspecting the message text at each step.
//
// A file or structured data part always selects the matching scenario.
// Otherwise the request text is matched against scenario keywords, falling
// back to plain text processing.
func Classify(message *taskwire.Message) agent.Kind {
	if message.FilePart() != nil {
		return agent.KindFile
	}
	if message.DataPart() != nil {
		return agent.KindData
	}

	text := strings.ToLower(message.TextContent())
	switch {
	case strings.Contains(text, "error") || strings.Contains(text, "fail"):
		return agent.KindError
	case strings.Contains(text, "cancel") || strings.Contains(text, "stop"):
		return agent.KindCancel
	case strings.Contains(text, "input") || strings.Contains(text, "require"):
		return agent.KindInputRequired
	case strings.Contains(text, "long") || strings.Contains(text, "progress"):
		return agent.KindLongRunning
	case strings.Contains(text, "file"):
		return agent.KindFile
	case strings.Contains(text, "form") || strings.Contains(text, "data"):
		return agent.KindData
	default:
		return agent.KindText
	}
}
