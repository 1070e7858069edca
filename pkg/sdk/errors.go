package shopsearch

import "github.com/shoplens/shopsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrProductNotFound        = domain.ErrProductNotFound
	ErrNoEmbedding            = domain.ErrNoEmbedding
	ErrInvalidFilter          = domain.ErrInvalidFilter
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
