// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package push

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/taskwire/taskwire"
)

// NotificationTokenHeader carries the client-registered token back to the
// receiver on every notification.
const NotificationTokenHeader = "X-Taskwire-Notification-Token"

// Sender delivers task records to registered webhook endpoints.
type Sender interface {
	// SendTaskNotification posts the task record to the endpoint registered
	// for its ID. A task with no registration is a no-op.
	SendTaskNotification(ctx context.Context, task *taskwire.Task) error
}

// HTTPSender is the HTTP implementation of Sender. Requests carry a JWT from
// the signer as a bearer token when a signer is configured.
type HTTPSender struct {
	client  *http.Client
	configs ConfigStore
	signer  *Signer
	logger  *slog.Logger
}

var _ Sender = (*HTTPSender)(nil)

// HTTPSenderConfig holds configuration for HTTPSender.
type HTTPSenderConfig struct {
	Client  *http.Client
	Configs ConfigStore

	// Signer is optional; without it notifications go out unsigned.
	Signer *Signer

	Logger *slog.Logger
}

// NewHTTPSender creates an HTTPSender.
func NewHTTPSender(config HTTPSenderConfig) (*HTTPSender, error) {
	if config.Configs == nil {
		return nil, fmt.Errorf("config store cannot be nil")
	}
	client := config.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSender{
		client:  client,
		configs: config.Configs,
		signer:  config.Signer,
		logger:  logger,
	}, nil
}

// SendTaskNotification posts the task record to its registered endpoint.
func (s *HTTPSender) SendTaskNotification(ctx context.Context, task *taskwire.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	config, ok, err := s.configs.Get(ctx, task.ID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if config.Token != "" {
		req.Header.Set(NotificationTokenHeader, config.Token)
	}
	if s.signer != nil {
		token, err := s.signer.Sign(body)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification for task %s: %w", task.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d for task %s",
			resp.StatusCode, task.ID)
	}

	s.logger.InfoContext(ctx, "push notification delivered",
		slog.String("task_id", task.ID),
		slog.String("state", string(task.Status.State)))
	return nil
}
