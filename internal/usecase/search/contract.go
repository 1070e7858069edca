package search

import (
	"context"

	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
)

// Catalog defines the storage contract for ranking.
type Catalog interface {
	Get(ctx context.Context, id string) (product.Product, error)
	FetchCandidates(ctx context.Context, f filter.Filter) ([]product.Product, error)
	GetEmbedding(ctx context.Context, id string) ([]float32, error)
	GetEmbeddings(ctx context.Context, ids []string) (map[string][]float32, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
