// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash-lite"

// GeminiGenerator streams completions from the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

var _ ChunkGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator backed by the Gemini API. An empty
// model selects DefaultGeminiModel.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Stream generates content for the prompt, emitting one chunk per model
// response fragment.
func (g *GeminiGenerator) Stream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)

	out := make(chan Chunk)
	go func() {
		defer close(out)
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, []*genai.Content{content}, nil) {
			if err != nil {
				select {
				case out <- Chunk{Err: fmt.Errorf("generate content: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case out <- Chunk{Text: resp.Text()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
