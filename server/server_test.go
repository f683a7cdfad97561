// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/taskwire/taskwire/server/agent"
	"github.com/taskwire/taskwire/server/execution"
	"github.com/taskwire/taskwire/server/task"
)

func newTestServer(t *testing.T, enablePush bool) *Server {
	t.Helper()
	a, err := agent.New(&agent.ScriptedGenerator{Chunks: []string{"ok"}}, agent.WithStepDelay(0))
	if err != nil {
		t.Fatalf("agent.New failed: %v", err)
	}
	executor, err := execution.NewExecutor(a, nil)
	if err != nil {
		t.Fatalf("NewExecutor failed: %v", err)
	}
	s, err := New(Config{
		Store:      task.NewInMemoryStore(),
		Executor:   executor,
		EnablePush: enablePush,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestServerHealthz(t *testing.T) {
	s := newTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestServerServesProtocol(t *testing.T) {
	s := newTestServer(t, false)

	body := `{"jsonrpc":"2.0","id":1,"method":"message/send","params":{"message":{"role":"user","message_id":"m1","parts":[{"kind":"text","text":"say hello"}]}}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d\nbody: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"completed"`) {
		t.Errorf("expected completed task in response, got %s", rec.Body.String())
	}
}

func TestServerJWKSRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil)

	// Without push the route does not exist.
	rec := httptest.NewRecorder()
	newTestServer(t, false).Handler().ServeHTTP(rec, req)
	if rec.Code == http.StatusOK {
		t.Error("expected no JWKS route without push enabled")
	}

	rec = httptest.NewRecorder()
	newTestServer(t, true).Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected JWKS route with push enabled, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"keys"`) {
		t.Errorf("expected JWKS document, got %s", rec.Body.String())
	}
}
