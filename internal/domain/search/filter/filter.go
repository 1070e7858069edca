package filter

import (
	"strings"

	"github.com/shoplens/shopsearch/internal/domain/product"
)

// Filter is a conjunction of structured constraints over catalog fields.
// Absent constraints impose no restriction.
type Filter struct {
	category  string
	brand     string
	priceMin  *float64
	priceMax  *float64
	ratingMin *float64
}

// New creates a Filter from optional constraints. Nil pointers and empty
// strings mean "unconstrained".
func New(category, brand string, priceMin, priceMax, ratingMin *float64) Filter {
	return Filter{
		category:  category,
		brand:     brand,
		priceMin:  priceMin,
		priceMax:  priceMax,
		ratingMin: ratingMin,
	}
}

// Category returns the category constraint ("" if unconstrained).
func (f Filter) Category() string { return f.category }

// Brand returns the brand constraint ("" if unconstrained).
func (f Filter) Brand() string { return f.brand }

// PriceMin returns the inclusive lower price bound (nil if unconstrained).
func (f Filter) PriceMin() *float64 { return f.priceMin }

// PriceMax returns the inclusive upper price bound (nil if unconstrained).
func (f Filter) PriceMax() *float64 { return f.priceMax }

// RatingMin returns the inclusive minimum rating (nil if unconstrained).
func (f Filter) RatingMin() *float64 { return f.ratingMin }

// IsEmpty reports whether the filter has no constraints.
func (f Filter) IsEmpty() bool {
	return f.category == "" && f.brand == "" &&
		f.priceMin == nil && f.priceMax == nil && f.ratingMin == nil
}

// Matches evaluates the conjunction against a product. String constraints
// compare case-insensitively, numeric bounds are inclusive.
func (f Filter) Matches(p *product.Product) bool {
	if f.category != "" && !strings.EqualFold(f.category, p.Category()) {
		return false
	}
	if f.brand != "" && !strings.EqualFold(f.brand, p.Brand()) {
		return false
	}
	if f.priceMin != nil && p.Price() < *f.priceMin {
		return false
	}
	if f.priceMax != nil && p.Price() > *f.priceMax {
		return false
	}
	if f.ratingMin != nil && p.Rating() < *f.ratingMin {
		return false
	}
	return true
}
