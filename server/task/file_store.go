// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/taskwire/taskwire"
)

// fileDocument is the persisted layout: one JSON document whose top-level
// "tasks" key maps task ID to record.
type fileDocument struct {
	Tasks map[string]*taskwire.Task `json:"tasks"`
}

// FileStore is a durable Store backed by a single JSON document. The whole
// document is rewritten on every mutation; the write goes to a temporary
// file in the same directory followed by an atomic rename, so readers never
// observe a truncated document. A single mutex serializes all operations.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var (
	_ Store   = (*FileStore)(nil)
	_ Lister  = (*FileStore)(nil)
	_ Clearer = (*FileStore)(nil)
)

// NewFileStore creates a FileStore at path, initializing the document if the
// file does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path cannot be empty")
	}
	s := &FileStore{path: path}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeDocument(&fileDocument{Tasks: map[string]*taskwire.Task{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, NewStoreError("init", "", err)
	}
	return s, nil
}

// Save upserts a task record.
func (s *FileStore) Save(ctx context.Context, task *taskwire.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return ValidationError{TaskID: task.ID, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return NewStoreError("save", task.ID, err)
	}
	doc.Tasks[task.ID] = task
	if err := s.writeDocument(doc); err != nil {
		return NewStoreError("save", task.ID, err)
	}
	return nil
}

// Get retrieves a task by ID.
func (s *FileStore) Get(ctx context.Context, taskID string) (*taskwire.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return nil, NewStoreError("get", taskID, err)
	}
	task, ok := doc.Tasks[taskID]
	if !ok {
		return nil, taskwire.TaskNotFoundError{TaskID: taskID}
	}
	return task, nil
}

// Delete removes a task by ID, reporting whether it existed.
func (s *FileStore) Delete(ctx context.Context, taskID string) (bool, error) {
	if taskID == "" {
		return false, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return false, NewStoreError("delete", taskID, err)
	}
	if _, ok := doc.Tasks[taskID]; !ok {
		return false, nil
	}
	delete(doc.Tasks, taskID)
	if err := s.writeDocument(doc); err != nil {
		return false, NewStoreError("delete", taskID, err)
	}
	return true, nil
}

// List returns the IDs of all stored tasks.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readDocument()
	if err != nil {
		return nil, NewStoreError("list", "", err)
	}
	ids := make([]string, 0, len(doc.Tasks))
	for id := range doc.Tasks {
		ids = append(ids, id)
	}
	return ids, nil
}

// Clear resets the document to an empty task map.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeDocument(&fileDocument{Tasks: map[string]*taskwire.Task{}}); err != nil {
		return NewStoreError("clear", "", err)
	}
	return nil
}

// Close is a no-op; every mutation is already flushed to disk.
func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

// Path returns the document path.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) readDocument() (*fileDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.Tasks == nil {
		doc.Tasks = map[string]*taskwire.Task{}
	}
	return &doc, nil
}

// writeDocument replaces the document atomically: write to a temp file in
// the same directory, sync, then rename over the target.
func (s *FileStore) writeDocument(doc *fileDocument) error {
	data, err := json.Marshal(doc, jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp document: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
