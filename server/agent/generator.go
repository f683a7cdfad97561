// Copyright 2025 The Taskwire Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"context"
)

// Chunk is one piece of generated text. A chunk with a non-nil Err ends the
// stream; no further chunks follow it.
type Chunk struct {
	Text string
	Err  error
}

// ChunkGenerator produces text for a prompt as a stream of chunks. The
// returned channel is closed when generation finishes or the context is
// canceled.
type ChunkGenerator interface {
	Stream(ctx context.Context, prompt string) (<-chan Chunk, error)
}

// ScriptedGenerator replays a fixed chunk sequence. It backs tests and demo
// deployments that must not call a live model.
type ScriptedGenerator struct {
	// Chunks are emitted in order for every prompt.
	Chunks []string

	// Err, if set, is emitted after the chunks.
	Err error
}

var _ ChunkGenerator = (*ScriptedGenerator)(nil)

// Stream emits the scripted chunks.
func (g *ScriptedGenerator) Stream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	out := make(chan Chunk)
	go func() {
		defer close(out)
		for _, text := range g.Chunks {
			select {
			case out <- Chunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
		if g.Err != nil {
			select {
			case out <- Chunk{Err: g.Err}:
			case <-ctx.Done():
			}
		}
	}()
	return out, nil
}
