package request

import (
	"fmt"

	"github.com/shoplens/shopsearch/internal/domain/search/filter"
)

// DefaultSimilarLimit is the page size for "more like this" queries.
const DefaultSimilarLimit = 8

// SimilarRequest is a validated "more like this" query anchored on a product.
type SimilarRequest struct {
	productID string
	filters   filter.Filter
	limit     int
	minScore  float64
}

// NewSimilar validates and normalizes similar request parameters.
func NewSimilar(
	productID string,
	filters filter.Filter,
	limit int,
	minScore float64,
) (SimilarRequest, error) {
	if productID == "" {
		return SimilarRequest{}, fmt.Errorf("product ID is required")
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if minScore < 0 || minScore > 1 {
		return SimilarRequest{}, fmt.Errorf("min_score must be between 0 and 1")
	}

	return SimilarRequest{
		productID: productID,
		filters:   filters,
		limit:     limit,
		minScore:  minScore,
	}, nil
}

// ProductID returns the anchor product identifier.
func (r *SimilarRequest) ProductID() string { return r.productID }

// Filters returns the structured constraint set.
func (r *SimilarRequest) Filters() filter.Filter { return r.filters }

// Limit returns the maximum results to return.
func (r *SimilarRequest) Limit() int { return r.limit }

// MinScore returns the minimum similarity threshold (0 disables it).
func (r *SimilarRequest) MinScore() float64 { return r.minScore }
