package rag

import (
	"context"

	"mindmapd/internal/llm"
)

// ClientEmbedder adapts an API client to the Embedder interface by fixing
// the embedding model.
type ClientEmbedder struct {
	Client *llm.Client
	Model  string
}

func (e ClientEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.Client.Embed(ctx, e.Model, texts)
}
