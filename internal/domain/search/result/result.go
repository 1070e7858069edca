package result

import "github.com/shoplens/shopsearch/internal/domain/product"

// Result is a single ranked hit.
type Result struct {
	product product.Product
	score   float64
	scored  bool
}

// New creates a ranked hit with a similarity score.
func New(p product.Product, score float64) Result {
	return Result{product: p, score: score, scored: true}
}

// NewUnscored creates a hit that did not go through similarity scoring.
// Its score reads as 0.
func NewUnscored(p product.Product) Result {
	return Result{product: p}
}

// Product returns the matched product.
func (r *Result) Product() *product.Product { return &r.product }

// Score returns the similarity score (0 when unscored).
func (r *Result) Score() float64 { return r.score }

// Scored reports whether the hit carries a real similarity score.
func (r *Result) Scored() bool { return r.scored }

// Page is one window of the ranked result set.
type Page struct {
	results  []Result
	total    int
	semantic bool
}

// NewPage assembles a response page. Total is the size of the full filtered
// set before pagination, semantic reports whether similarity scoring ran.
func NewPage(results []Result, total int, semantic bool) Page {
	return Page{results: results, total: total, semantic: semantic}
}

// Results returns the hits in this window.
func (p *Page) Results() []Result { return p.results }

// Total returns the full filtered set size.
func (p *Page) Total() int { return p.total }

// Semantic reports whether similarity scoring contributed to the ordering.
func (p *Page) Semantic() bool { return p.semantic }
