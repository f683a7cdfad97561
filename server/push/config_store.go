// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package push delivers task state notifications to client-registered
// webhook endpoints. Each request is signed with the server's key so
// receivers can authenticate the sender against the published JWKS.
package push

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// Config is a client-registered push notification endpoint for one task.
type Config struct {
	// URL is the webhook endpoint notified on task state changes.
	URL string `json:"url"`

	// Token is an opaque client-chosen value echoed back on every
	// notification so the receiver can correlate it with its registration.
	Token string `json:"token,omitzero"`
}

// Validate ensures the config carries a usable endpoint.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("push notification URL cannot be empty")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid push notification URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("push notification URL must be http or https, got %q", u.Scheme)
	}
	return nil
}

// ConfigStore stores push notification configs keyed by task ID.
type ConfigStore interface {
	// Save registers or replaces the config for a task.
	Save(ctx context.Context, taskID string, config *Config) error

	// Get retrieves the config for a task; ok is false when none is
	// registered.
	Get(ctx context.Context, taskID string) (*Config, bool, error)

	// Delete removes the config for a task. Deleting an absent config is not
	// an error.
	Delete(ctx context.Context, taskID string) error
}

// InMemoryConfigStore is the process-local ConfigStore. Registrations are
// lost when the process ends.
type InMemoryConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*Config
}

var _ ConfigStore = (*InMemoryConfigStore)(nil)

// NewInMemoryConfigStore creates an empty InMemoryConfigStore.
func NewInMemoryConfigStore() *InMemoryConfigStore {
	return &InMemoryConfigStore{configs: make(map[string]*Config)}
}

// Save registers or replaces the config for a task.
func (s *InMemoryConfigStore) Save(ctx context.Context, taskID string, config *Config) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if config == nil {
		return fmt.Errorf("push notification config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *config
	s.configs[taskID] = &cp
	return nil
}

// Get retrieves the config for a task.
func (s *InMemoryConfigStore) Get(ctx context.Context, taskID string) (*Config, bool, error) {
	if taskID == "" {
		return nil, false, fmt.Errorf("task ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	config, ok := s.configs[taskID]
	if !ok {
		return nil, false, nil
	}
	cp := *config
	return &cp, true, nil
}

// Delete removes the config for a task.
func (s *InMemoryConfigStore) Delete(ctx context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.configs, taskID)
	return nil
}
