package storeqa

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/storeqa/internal/domain"
)

// Embedder converts text to vector embeddings. Replaces the OpenAI embedder when set.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Completer generates a reply from a system prompt and a user prompt. Replaces the OpenAI
// chat client when set.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// embedderAdapter bridges the public Embedder to domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// completerAdapter adds the health check the internal wiring expects. A custom completer
// is reported healthy when it implements no HealthCheck of its own.
type completerAdapter struct {
	inner Completer
}

func (a *completerAdapter) Complete(ctx context.Context, system, user string) (string, error) {
	return a.inner.Complete(ctx, system, user)
}

func (a *completerAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
