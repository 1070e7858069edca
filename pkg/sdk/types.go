package shopsearch

import (
	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
	"github.com/shoplens/shopsearch/internal/domain/search/result"
	"github.com/shoplens/shopsearch/internal/domain/search/sortmode"
)

// SortMode selects the primary ordering of search results.
type SortMode string

// Sort mode constants.
const (
	// SortRelevance orders by similarity score; the default when query text is given.
	SortRelevance      SortMode = "relevance"
	SortPriceAsc       SortMode = "price_asc"
	SortPriceDesc      SortMode = "price_desc"
	SortRatingDesc     SortMode = "rating_desc"
	SortPopularityDesc SortMode = "popularity_desc"
)

// Action is a storefront interaction kind.
type Action string

// Interaction constants, ordered by intent strength.
const (
	ActionView      Action = "view"
	ActionClick     Action = "click"
	ActionAddToCart Action = "add_to_cart"
	ActionPurchase  Action = "purchase"
)

// Filters narrows the candidate set before ranking.
// Zero values and nil pointers leave the corresponding constraint off.
type Filters struct {
	Category  string
	Brand     string
	PriceMin  *float64
	PriceMax  *float64
	RatingMin *float64
}

// Product is one catalog entry.
type Product struct {
	ID          string
	Title       string
	Description string
	Tags        string
	Category    string
	Brand       string
	Price       float64
	WasPrice    float64
	Discount    float64
	Rating      float64
	Popularity  int64
	ImageURL    string
	ProductURL  string
}

// Result is a single ranked hit.
type Result struct {
	Product Product
	// Score is the cosine similarity to the query (0 when Scored is false).
	Score  float64
	Scored bool
}

// Page is one window of the ranked result set.
type Page struct {
	Results []Result
	// Total is the size of the full filtered set before pagination.
	Total int
	// Semantic reports whether similarity scoring contributed to the ordering.
	Semantic bool
}

func (f Filters) toDomain() filter.Filter {
	return filter.New(f.Category, f.Brand, f.PriceMin, f.PriceMax, f.RatingMin)
}

func fromDomainProduct(p *product.Product) Product {
	return Product{
		ID:          p.ID(),
		Title:       p.Title(),
		Description: p.Description(),
		Tags:        p.Tags(),
		Category:    p.Category(),
		Brand:       p.Brand(),
		Price:       p.Price(),
		WasPrice:    p.WasPrice(),
		Discount:    p.Discount(),
		Rating:      p.Rating(),
		Popularity:  p.Popularity(),
		ImageURL:    p.ImageURL(),
		ProductURL:  p.ProductURL(),
	}
}

func fromDomainPage(page result.Page) Page {
	hits := page.Results()
	results := make([]Result, 0, len(hits))
	for i := range hits {
		results = append(results, Result{
			Product: fromDomainProduct(hits[i].Product()),
			Score:   hits[i].Score(),
			Scored:  hits[i].Scored(),
		})
	}
	return Page{
		Results:  results,
		Total:    page.Total(),
		Semantic: page.Semantic(),
	}
}

func (m SortMode) toDomain() sortmode.Mode {
	return sortmode.Mode(m)
}
