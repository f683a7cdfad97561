// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package taskwire

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// PartKind discriminates the content carried by a message part.
type PartKind string

const (
	PartKindText PartKind = "text"
	PartKindFile PartKind = "file"
	PartKindData PartKind = "data"
)

// FilePayload carries file content in a transport-safe encoding.
type FilePayload struct {
	Name     string `json:"name,omitzero"`
	MIMEType string `json:"mime_type,omitzero"`

	// Bytes is the base64-encoded file content.
	Bytes string `json:"bytes"`
}

// Decode returns the decoded file content.
func (f *FilePayload) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(f.Bytes)
	if err != nil {
		return nil, fmt.Errorf("decode file %q: %w", f.Name, err)
	}
	return data, nil
}

// Part is one segment of a message: plain text, a file, or structured data.
type Part struct {
	Kind PartKind       `json:"kind"`
	Text string         `json:"text,omitzero"`
	File *FilePayload   `json:"file,omitzero"`
	Data map[string]any `json:"data,omitzero"`
}

// Validate ensures the Part carries content matching its kind.
func (p Part) Validate() error {
	switch p.Kind {
	case PartKindText:
		if p.Text == "" {
			return fmt.Errorf("text part text cannot be empty")
		}
	case PartKindFile:
		if p.File == nil {
			return fmt.Errorf("file part file cannot be nil")
		}
	case PartKindData:
		if p.Data == nil {
			return fmt.Errorf("data part data cannot be nil")
		}
	default:
		return fmt.Errorf("unknown part kind: %q", p.Kind)
	}
	return nil
}

// Message represents one inbound or outbound message.
type Message struct {
	Role      Role   `json:"role"`
	Parts     []Part `json:"parts"`
	MessageID string `json:"message_id"`
	TaskID    string `json:"task_id,omitzero"`
	ContextID string `json:"context_id,omitzero"`
}

// Validate ensures the Message is well formed.
func (m *Message) Validate() error {
	if m.Role != RoleUser && m.Role != RoleAgent {
		return fmt.Errorf("invalid message role: %q", m.Role)
	}
	if m.MessageID == "" {
		return fmt.Errorf("message ID cannot be empty")
	}
	if len(m.Parts) == 0 {
		return fmt.Errorf("message must contain at least one part")
	}
	for i, part := range m.Parts {
		if err := part.Validate(); err != nil {
			return fmt.Errorf("message part at index %d is invalid: %w", i, err)
		}
	}
	return nil
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	clone := &Message{
		Role:      m.Role,
		MessageID: m.MessageID,
		TaskID:    m.TaskID,
		ContextID: m.ContextID,
	}
	if m.Parts != nil {
		clone.Parts = make([]Part, len(m.Parts))
		for i, part := range m.Parts {
			cp := part
			if part.File != nil {
				f := *part.File
				cp.File = &f
			}
			if part.Data != nil {
				data := make(map[string]any, len(part.Data))
				for k, v := range part.Data {
					data[k] = v
				}
				cp.Data = data
			}
			clone.Parts[i] = cp
		}
	}
	return clone
}

// TextContent joins the text of all text parts with newlines.
func (m *Message) TextContent() string {
	if m == nil {
		return ""
	}
	var texts []string
	for _, part := range m.Parts {
		if part.Kind == PartKindText && part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// FilePart returns the first file part of the message, or nil.
func (m *Message) FilePart() *FilePayload {
	for _, part := range m.Parts {
		if part.Kind == PartKindFile && part.File != nil {
			return part.File
		}
	}
	return nil
}

// DataPart returns the first structured data part of the message, or nil.
func (m *Message) DataPart() map[string]any {
	for _, part := range m.Parts {
		if part.Kind == PartKindData && part.Data != nil {
			return part.Data
		}
	}
	return nil
}

// NewUserTextMessage creates a user message containing a single text part.
// taskID and contextID may be empty for a first-contact submission.
func NewUserTextMessage(text, taskID, contextID string) (*Message, error) {
	if text == "" {
		return nil, fmt.Errorf("text content cannot be empty")
	}
	return &Message{
		Role:      RoleUser,
		Parts:     []Part{{Kind: PartKindText, Text: text}},
		MessageID: uuid.NewString(),
		TaskID:    taskID,
		ContextID: contextID,
	}, nil
}

// NewAgentTextMessage creates an agent message containing a single text part.
func NewAgentTextMessage(text, taskID, contextID string) (*Message, error) {
	if text == "" {
		return nil, fmt.Errorf("text content cannot be empty")
	}
	return &Message{
		Role:      RoleAgent,
		Parts:     []Part{{Kind: PartKindText, Text: text}},
		MessageID: uuid.NewString(),
		TaskID:    taskID,
		ContextID: contextID,
	}, nil
}
