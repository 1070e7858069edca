package shopsearch

import (
	"context"
	"fmt"

	"github.com/shoplens/shopsearch/internal/domain"
)

// Embedder vectorizes text for semantic search.
// Implementations wrap an embedding provider (OpenAI-compatible APIs,
// local models). The vector dimensionality must match the one the
// catalog was ingested with.
type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}

// Embedding is one vectorization result with token usage.
type Embedding struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// embedderAdapter wraps the public Embedder to satisfy the internal contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Vector,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder fails every call; free-text queries then degrade to a
// popularity ordering inside the ranking pipeline.
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf(
		"shopsearch: embedder not configured (use WithEmbedder for semantic search): %w",
		domain.ErrEmbeddingProviderError,
	)
}
