// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-json-experiment/json"
	"gorm.io/gorm"

	"github.com/taskwire/taskwire"
)

// TaskRow is the database row for a task record. The record itself is stored
// as a JSON blob; ID, context ID and state are lifted into columns so they
// can be indexed and filtered without decoding the blob.
type TaskRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	ContextID string    `gorm:"size:36;index;not null"`
	State     string    `gorm:"size:16;index;not null"`
	Record    []byte    `gorm:"type:json;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for TaskRow.
func (TaskRow) TableName() string { return "tasks" }

func newTaskRow(task *taskwire.Task) (*TaskRow, error) {
	record, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("encode task record: %w", err)
	}
	return &TaskRow{
		ID:        task.ID,
		ContextID: task.ContextID,
		State:     string(task.Status.State),
		Record:    record,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}, nil
}

func (r *TaskRow) toTask() (*taskwire.Task, error) {
	var task taskwire.Task
	if err := json.Unmarshal(r.Record, &task); err != nil {
		return nil, fmt.Errorf("decode task record: %w", err)
	}
	return &task, nil
}

// DatabaseStore is a Store backed by a relational database through GORM. The
// caller injects the *gorm.DB; the store never opens or owns the connection.
type DatabaseStore struct {
	db *gorm.DB
}

var (
	_ Store   = (*DatabaseStore)(nil)
	_ Lister  = (*DatabaseStore)(nil)
	_ Clearer = (*DatabaseStore)(nil)
)

// NewDatabaseStore creates a DatabaseStore on the given connection and
// migrates the tasks table.
func NewDatabaseStore(db *gorm.DB) (*DatabaseStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if err := db.AutoMigrate(&TaskRow{}); err != nil {
		return nil, NewStoreError("migrate", "", err)
	}
	return &DatabaseStore{db: db}, nil
}

// Save upserts a task record.
func (s *DatabaseStore) Save(ctx context.Context, task *taskwire.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return ValidationError{TaskID: task.ID, Err: err}
	}

	row, err := newTaskRow(task)
	if err != nil {
		return NewStoreError("save", task.ID, err)
	}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		return NewStoreError("save", task.ID, err)
	}
	return nil
}

// Get retrieves a task by ID.
func (s *DatabaseStore) Get(ctx context.Context, taskID string) (*taskwire.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	var row TaskRow
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskwire.TaskNotFoundError{TaskID: taskID}
		}
		return nil, NewStoreError("get", taskID, err)
	}

	task, err := row.toTask()
	if err != nil {
		return nil, NewStoreError("get", taskID, err)
	}
	return task, nil
}

// Delete removes a task by ID, reporting whether a row existed.
func (s *DatabaseStore) Delete(ctx context.Context, taskID string) (bool, error) {
	if taskID == "" {
		return false, fmt.Errorf("task ID cannot be empty")
	}

	result := s.db.WithContext(ctx).Where("id = ?", taskID).Delete(&TaskRow{})
	if result.Error != nil {
		return false, NewStoreError("delete", taskID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// List returns the IDs of all stored tasks, ordered by creation time.
func (s *DatabaseStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&TaskRow{}).
		Order("created_at").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, NewStoreError("list", "", err)
	}
	return ids, nil
}

// ListByContext returns all tasks sharing a context ID.
func (s *DatabaseStore) ListByContext(ctx context.Context, contextID string) ([]*taskwire.Task, error) {
	if contextID == "" {
		return nil, fmt.Errorf("context ID cannot be empty")
	}

	var rows []TaskRow
	err := s.db.WithContext(ctx).
		Where("context_id = ?", contextID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, NewStoreError("list_by_context", contextID, err)
	}

	tasks := make([]*taskwire.Task, len(rows))
	for i := range rows {
		task, err := rows[i].toTask()
		if err != nil {
			return nil, NewStoreError("list_by_context", rows[i].ID, err)
		}
		tasks[i] = task
	}
	return tasks, nil
}

// Clear removes every task row.
func (s *DatabaseStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&TaskRow{}).Error; err != nil {
		return NewStoreError("clear", "", err)
	}
	return nil
}

// Close is a no-op; the connection is owned by the caller.
func (s *DatabaseStore) Close(ctx context.Context) error {
	return nil
}
