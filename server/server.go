// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package server assembles the task lifecycle server: storage, event queues,
// the execution coordinator, push notification delivery, and the HTTP
// surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskwire/taskwire/server/event"
	"github.com/taskwire/taskwire/server/execution"
	"github.com/taskwire/taskwire/server/handler"
	"github.com/taskwire/taskwire/server/push"
	"github.com/taskwire/taskwire/server/task"
)

// Server is the assembled task lifecycle server.
type Server struct {
	addr        string
	store       task.Store
	queues      event.QueueManager
	coordinator *execution.Coordinator
	pushConfigs push.ConfigStore
	signer      *push.Signer
	rpc         *handler.JSONRPCHandler
	logger      *slog.Logger

	httpServer *http.Server
}

// Config holds configuration for assembling a Server.
type Config struct {
	// Addr is the listen address, for example ":8080".
	Addr string

	// Store is the task persistence backend.
	Store task.Store

	// Executor runs agent logic for incoming messages.
	Executor execution.AgentExecutor

	// QueueSize is the per-task event queue capacity; 0 selects the default.
	QueueSize int

	// EnablePush turns on webhook notification delivery and request signing.
	EnablePush bool

	// PushIssuer is the iss claim of notification tokens.
	PushIssuer string

	Logger *slog.Logger
}

// New assembles a Server.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	queues := event.NewInMemoryQueueManager(cfg.QueueSize)
	pushConfigs := push.NewInMemoryConfigStore()

	var signer *push.Signer
	var notifier push.Sender
	if cfg.EnablePush {
		issuer := cfg.PushIssuer
		if issuer == "" {
			issuer = "taskwire"
		}
		var err error
		signer, err = push.NewSigner(issuer)
		if err != nil {
			return nil, err
		}
		notifier, err = push.NewHTTPSender(push.HTTPSenderConfig{
			Configs: pushConfigs,
			Signer:  signer,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
	}

	coordinator, err := execution.NewCoordinator(execution.CoordinatorConfig{
		Executor: cfg.Executor,
		Store:    cfg.Store,
		Queues:   queues,
		Notifier: notifier,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	rpc, err := handler.NewJSONRPCHandler(handler.JSONRPCHandlerConfig{
		Coordinator: coordinator,
		Store:       cfg.Store,
		PushConfigs: pushConfigs,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:        addr,
		store:       cfg.Store,
		queues:      queues,
		coordinator: coordinator,
		pushConfigs: pushConfigs,
		signer:      signer,
		rpc:         rpc,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.Handle("POST /", s.rpc)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	if signer != nil {
		mux.HandleFunc("GET /.well-known/jwks.json", signer.JWKSHandler())
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Coordinator returns the execution coordinator, mainly for tests.
func (s *Server) Coordinator() *execution.Coordinator { return s.coordinator }

// Handler returns the HTTP handler serving the protocol.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start serves HTTP until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", s.addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return s.Shutdown(context.Background())
}

// Shutdown stops the HTTP listener, closes all event queues, and shuts down
// the store.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var firstErr error
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		firstErr = err
	}
	if err := s.queues.CloseAll(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.store.Close(shutdownCtx); err != nil && firstErr == nil {
		firstErr = err
	}
	s.logger.Info("server stopped")
	return firstErr
}
