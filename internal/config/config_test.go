// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected default addr: %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != StoreBackendMemory {
		t.Errorf("unexpected default store backend: %q", cfg.Store.Backend)
	}
	if cfg.Agent.Generator != GeneratorScripted {
		t.Errorf("unexpected default generator: %q", cfg.Agent.Generator)
	}
	if !cfg.Push.Enabled {
		t.Error("expected push enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected defaults for missing file, got addr %q", cfg.Server.Addr)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
store:
  backend: file
  path: /tmp/tasks.json
agent:
  generator: gemini
  step_delay: 50ms
debug: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected overridden addr, got %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != StoreBackendFile || cfg.Store.Path != "/tmp/tasks.json" {
		t.Errorf("expected file store config, got %+v", cfg.Store)
	}
	if cfg.Agent.Generator != GeneratorGemini {
		t.Errorf("expected gemini generator, got %q", cfg.Agent.Generator)
	}
	if cfg.Agent.StepDelay != 50*time.Millisecond {
		t.Errorf("expected 50ms step delay, got %s", cfg.Agent.StepDelay)
	}
	if !cfg.Debug {
		t.Error("expected debug enabled")
	}

	// Unset fields keep their defaults.
	if cfg.Server.QueueSize != 1024 {
		t.Errorf("expected default queue size, got %d", cfg.Server.QueueSize)
	}
	if cfg.Agent.Model != "gemini-2.5-flash-lite" {
		t.Errorf("expected default model, got %q", cfg.Agent.Model)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad backend", "store:\n  backend: redis\n"},
		{"file without path", "store:\n  backend: file\n  path: \"\"\n"},
		{"bad generator", "agent:\n  generator: markov\n"},
		{"negative queue", "server:\n  queue_size: -1\n"},
		{"malformed yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected Load to fail")
			}
		})
	}
}

func TestResolveAPIKey(t *testing.T) {
	cfg := AgentConfig{APIKey: "direct", APIKeyEnv: "TASKWIRE_TEST_KEY"}
	if got := cfg.ResolveAPIKey(); got != "direct" {
		t.Errorf("expected explicit key to win, got %q", got)
	}

	t.Setenv("TASKWIRE_TEST_KEY", "from-env")
	cfg.APIKey = ""
	if got := cfg.ResolveAPIKey(); got != "from-env" {
		t.Errorf("expected environment fallback, got %q", got)
	}
}
