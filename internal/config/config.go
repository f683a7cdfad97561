// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads server configuration from a YAML file with
// environment variable fallbacks for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreBackendMemory = "memory"
	StoreBackendFile   = "file"
)

// Generator backends.
const (
	GeneratorScripted = "scripted"
	GeneratorGemini   = "gemini"
)

// Config is the server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Agent  AgentConfig  `yaml:"agent"`
	Push   PushConfig   `yaml:"push"`
	Debug  bool         `yaml:"debug"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// QueueSize is the per-task event queue capacity.
	QueueSize int `yaml:"queue_size"`
}

// StoreConfig selects and configures the task store backend.
type StoreConfig struct {
	// Backend is "memory" or "file".
	Backend string `yaml:"backend"`

	// Path is the JSON document path for the file backend.
	Path string `yaml:"path"`
}

// AgentConfig configures the demo agent.
type AgentConfig struct {
	// Generator is "scripted" or "gemini".
	Generator string `yaml:"generator"`

	Model     string `yaml:"model"`
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`

	// StepDelay paces multi-step scenarios.
	StepDelay time.Duration `yaml:"step_delay"`
}

// ResolveAPIKey returns the configured key, falling back to the environment.
func (c AgentConfig) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

// PushConfig configures push notification delivery.
type PushConfig struct {
	Enabled bool `yaml:"enabled"`

	// Issuer is the iss claim of notification tokens.
	Issuer string `yaml:"issuer"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			QueueSize: 1024,
		},
		Store: StoreConfig{
			Backend: StoreBackendMemory,
			Path:    "tasks.json",
		},
		Agent: AgentConfig{
			Generator: GeneratorScripted,
			Model:     "gemini-2.5-flash-lite",
			APIKeyEnv: "GOOGLE_API_KEY",
			StepDelay: 500 * time.Millisecond,
		},
		Push: PushConfig{
			Enabled: true,
			Issuer:  "taskwire",
		},
	}
}

// Load reads configuration from path, overlaying the defaults. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}

	switch c.Agent.Generator {
	case GeneratorScripted, GeneratorGemini:
	default:
		return fmt.Errorf("unknown agent generator: %q", c.Agent.Generator)
	}

	if c.Server.QueueSize < 0 {
		return fmt.Errorf("server.queue_size cannot be negative")
	}
	return nil
}
