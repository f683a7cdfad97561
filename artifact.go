// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package taskwire

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ArtifactKind discriminates the payload carried by an artifact.
type ArtifactKind string

const (
	ArtifactKindText ArtifactKind = "text"
	ArtifactKindFile ArtifactKind = "file"
	ArtifactKindData ArtifactKind = "structured-data"
)

// FileContent is the decoded payload of a file artifact.
type FileContent struct {
	Name     string `json:"name,omitzero"`
	MIMEType string `json:"mime_type,omitzero"`
	Bytes    []byte `json:"bytes"`
}

// Artifact is a discrete piece of output produced while executing a task.
// Its payload field matches its kind: Text for text artifacts, File for file
// artifacts, and Data for structured data artifacts.
type Artifact struct {
	ID          string       `json:"id"`
	Name        string       `json:"name,omitzero"`
	Description string       `json:"description,omitzero"`
	Kind        ArtifactKind `json:"kind"`

	Text string         `json:"text,omitzero"`
	File *FileContent   `json:"file,omitzero"`
	Data map[string]any `json:"data,omitzero"`

	// LastChunk is false while the artifact is still being streamed and is
	// set to true by the final chunk of the stream.
	LastChunk bool `json:"last_chunk"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Validate ensures the Artifact payload matches its kind.
func (a *Artifact) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("artifact ID cannot be empty")
	}
	switch a.Kind {
	case ArtifactKindText:
		if a.Text == "" {
			return fmt.Errorf("text artifact text cannot be empty")
		}
	case ArtifactKindFile:
		if a.File == nil {
			return fmt.Errorf("file artifact file cannot be nil")
		}
	case ArtifactKindData:
		if a.Data == nil {
			return fmt.Errorf("data artifact data cannot be nil")
		}
	default:
		return fmt.Errorf("unknown artifact kind: %q", a.Kind)
	}
	return nil
}

// Clone returns a deep copy of the artifact.
func (a *Artifact) Clone() *Artifact {
	if a == nil {
		return nil
	}
	clone := *a
	if a.File != nil {
		f := FileContent{
			Name:     a.File.Name,
			MIMEType: a.File.MIMEType,
			Bytes:    make([]byte, len(a.File.Bytes)),
		}
		copy(f.Bytes, a.File.Bytes)
		clone.File = &f
	}
	if a.Data != nil {
		data := make(map[string]any, len(a.Data))
		for k, v := range a.Data {
			data[k] = v
		}
		clone.Data = data
	}
	return &clone
}

// NewTextArtifact creates an Artifact containing text output.
func NewTextArtifact(name, text, description string) (*Artifact, error) {
	if text == "" {
		return nil, fmt.Errorf("text content cannot be empty")
	}
	return &Artifact{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Kind:        ArtifactKindText,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewDataArtifact creates an Artifact containing structured data output.
func NewDataArtifact(name string, data map[string]any, description string) (*Artifact, error) {
	if data == nil {
		return nil, fmt.Errorf("data content cannot be nil")
	}
	return &Artifact{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Kind:        ArtifactKindData,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewFileArtifact creates an Artifact containing file output.
func NewFileArtifact(name string, file *FileContent, description string) (*Artifact, error) {
	if file == nil {
		return nil, fmt.Errorf("file content cannot be nil")
	}
	return &Artifact{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Kind:        ArtifactKindFile,
		File:        file,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
