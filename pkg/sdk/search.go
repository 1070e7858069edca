package shopsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/shoplens/shopsearch/internal/domain/search/request"
)

// SearchOptions configures a search query. A nil options pointer uses
// the defaults: relevance order for free-text queries, popularity order
// for browse, the default page size, no filters.
type SearchOptions struct {
	Sort     SortMode
	Filters  Filters
	Offset   int
	Limit    int
	MinScore float64
}

// SimilarOptions configures a "more like this" query.
type SimilarOptions struct {
	Filters  Filters
	Limit    int
	MinScore float64
}

// Search ranks the catalog for a query. An empty query browses the
// filtered catalog in the requested field order. When the embedding
// provider fails, results degrade to a non-semantic ordering and the
// returned page reports Semantic=false.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (_ Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	if opts == nil {
		opts = &SearchOptions{}
	}

	req, err := request.New(
		query, opts.Sort.toDomain(), opts.Filters.toDomain(),
		opts.Offset, opts.Limit, opts.MinScore,
	)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}

	page, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		return Page{}, fmt.Errorf("search: %w", err)
	}
	return fromDomainPage(page), nil
}

// Similar returns products semantically close to the anchor product.
// The anchor itself is excluded. An anchor without a stored embedding
// yields an empty page; a missing anchor is ErrProductNotFound.
func (c *Client) Similar(ctx context.Context, productID string, opts *SimilarOptions) (_ Page, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	if opts == nil {
		opts = &SimilarOptions{}
	}

	req, err := request.NewSimilar(productID, opts.Filters.toDomain(), opts.Limit, opts.MinScore)
	if err != nil {
		return Page{}, fmt.Errorf("similar: %w", err)
	}

	page, err := c.searchSvc.Similar(ctx, &req)
	if err != nil {
		return Page{}, fmt.Errorf("similar: %w", err)
	}
	return fromDomainPage(page), nil
}

// GetProduct returns a single product by id.
// Returns ErrProductNotFound when the id is unknown.
func (c *Client) GetProduct(ctx context.Context, id string) (_ Product, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get_product", start, err) }()

	p, err := c.searchSvc.GetProduct(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return fromDomainProduct(&p), nil
}
