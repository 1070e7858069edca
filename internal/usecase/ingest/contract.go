package ingest

import (
	"context"

	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
)

// Catalog defines the storage contract for ingestion.
type Catalog interface {
	UpsertBatch(ctx context.Context, entries []product.Indexed) error
	FetchCandidates(ctx context.Context, f filter.Filter) ([]product.Product, error)
	GetEmbedding(ctx context.Context, id string) ([]float32, error)
	PutEmbedding(ctx context.Context, id string, vector []float32) error
}

// BatchEmbedder vectorizes product texts in provider batches.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
