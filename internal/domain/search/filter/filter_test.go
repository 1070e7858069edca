package filter

import (
	"errors"
	"testing"

	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/product"
)

func f64(v float64) *float64 { return &v }

func TestParse_RecognizedKeys(t *testing.T) {
	raw := map[string]any{
		"category":   "Electronics",
		"brand":      " Sony ",
		"price_min":  float64(10),
		"price_max":  "250.5",
		"rating_min": float64(4),
	}
	f, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Category() != "Electronics" {
		t.Errorf("category = %q", f.Category())
	}
	if f.Brand() != "Sony" {
		t.Errorf("brand = %q, want trimmed Sony", f.Brand())
	}
	if f.PriceMin() == nil || *f.PriceMin() != 10 {
		t.Errorf("price_min = %v", f.PriceMin())
	}
	if f.PriceMax() == nil || *f.PriceMax() != 250.5 {
		t.Errorf("price_max = %v", f.PriceMax())
	}
	if f.RatingMin() == nil || *f.RatingMin() != 4 {
		t.Errorf("rating_min = %v", f.RatingMin())
	}
}

func TestParse_UnknownKeysIgnored(t *testing.T) {
	f, err := Parse(map[string]any{
		"color":     "red",
		"warehouse": 7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsEmpty() {
		t.Error("expected empty filter when only unknown keys are given")
	}
}

func TestParse_BadNumeric(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		key  string
	}{
		{"price_min string", map[string]any{"price_min": "cheap"}, "price_min"},
		{"price_max bool", map[string]any{"price_max": true}, "price_max"},
		{"rating_min object", map[string]any{"rating_min": map[string]any{}}, "rating_min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if !errors.Is(err, domain.ErrInvalidFilter) {
				t.Fatalf("expected ErrInvalidFilter, got %v", err)
			}
			var ife *domain.InvalidFilterError
			if !errors.As(err, &ife) {
				t.Fatal("expected InvalidFilterError")
			}
			if ife.Key != tt.key {
				t.Errorf("error names key %q, want %q", ife.Key, tt.key)
			}
		})
	}
}

func TestParse_NullValueIgnored(t *testing.T) {
	f, err := Parse(map[string]any{"price_min": nil, "category": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.IsEmpty() {
		t.Error("expected null constraint values to be ignored")
	}
}

func TestMatches(t *testing.T) {
	p := product.Reconstruct(
		"p1", "Air Max", "", "", "Shoes", "Nike",
		89.99, 0, 0, 4.2, 500, "", "",
	)

	tests := []struct {
		name string
		f    Filter
		want bool
	}{
		{"empty filter", New("", "", nil, nil, nil), true},
		{"category match case-insensitive", New("shoes", "", nil, nil, nil), true},
		{"category mismatch", New("Books", "", nil, nil, nil), false},
		{"brand match", New("", "nike", nil, nil, nil), true},
		{"brand mismatch", New("", "Adidas", nil, nil, nil), false},
		{"price in range", New("", "", f64(50), f64(100), nil), true},
		{"price below min", New("", "", f64(90), nil, nil), false},
		{"price above max", New("", "", nil, f64(89), nil), false},
		{"price boundary inclusive", New("", "", f64(89.99), f64(89.99), nil), true},
		{"rating meets min", New("", "", nil, nil, f64(4.2)), true},
		{"rating below min", New("", "", nil, nil, f64(4.5)), false},
		{"inverted price range", New("", "", f64(100), f64(50), nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Matches(&p); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
