// Package openai adapts the OpenAI API to the embedding and
// image/table summarization ports.
package openai

import (
	"context"
	"fmt"

	"github.com/docmentor/docmentor/internal/infrastructure/llm/openaicompat"
)

type Embedder struct {
	client *openaicompat.Client
	model  string
}

func NewEmbedder(client *openaicompat.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.client.Embeddings(ctx, e.model, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.client.Embeddings(ctx, e.model, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}
