// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

// Command taskwired runs the task lifecycle server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/taskwire/taskwire/internal/config"
	"github.com/taskwire/taskwire/server"
	"github.com/taskwire/taskwire/server/agent"
	"github.com/taskwire/taskwire/server/execution"
	"github.com/taskwire/taskwire/server/task"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present; secrets like the model API key live there in
	// development.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "listen address (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("taskwired version %s\n", version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(cfg)
	if err != nil {
		return err
	}

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	demoAgent, err := agent.New(generator,
		agent.WithLogger(logger),
		agent.WithStepDelay(cfg.Agent.StepDelay))
	if err != nil {
		return err
	}
	executor, err := execution.NewExecutor(demoAgent, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Config{
		Addr:       cfg.Server.Addr,
		Store:      store,
		Executor:   executor,
		QueueSize:  cfg.Server.QueueSize,
		EnablePush: cfg.Push.Enabled,
		PushIssuer: cfg.Push.Issuer,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting taskwired",
		slog.String("version", version),
		slog.String("store", cfg.Store.Backend),
		slog.String("generator", cfg.Agent.Generator))
	return srv.Start(ctx)
}

func newStore(cfg *config.Config) (task.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendFile:
		return task.NewFileStore(cfg.Store.Path)
	default:
		return task.NewInMemoryStore(), nil
	}
}

func newGenerator(ctx context.Context, cfg *config.Config) (agent.ChunkGenerator, error) {
	switch cfg.Agent.Generator {
	case config.GeneratorGemini:
		apiKey := cfg.Agent.ResolveAPIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("gemini generator requires an API key (set %s)", cfg.Agent.APIKeyEnv)
		}
		return agent.NewGeminiGenerator(ctx, apiKey, cfg.Agent.Model)
	default:
		return &agent.ScriptedGenerator{
			Chunks: []string{"This is a demo response ", "streamed in chunks."},
		}, nil
	}
}
