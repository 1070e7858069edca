package filter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shoplens/shopsearch/internal/domain"
)

// Recognized constraint keys. Anything else in the raw map is ignored so
// clients can evolve ahead of the server.
const (
	KeyCategory  = "category"
	KeyBrand     = "brand"
	KeyPriceMin  = "price_min"
	KeyPriceMax  = "price_max"
	KeyRatingMin = "rating_min"
)

// Parse builds a Filter from a raw constraint map as decoded from a JSON
// request body. String constraints are trimmed, numeric constraints accept
// JSON numbers or numeric strings. A recognized key with an unparseable
// value yields an InvalidFilterError naming that key.
func Parse(raw map[string]any) (Filter, error) {
	var f Filter

	if v, ok := raw[KeyCategory]; ok {
		s, err := stringValue(v)
		if err != nil {
			return Filter{}, domain.NewInvalidFilter(KeyCategory, err.Error())
		}
		f.category = s
	}
	if v, ok := raw[KeyBrand]; ok {
		s, err := stringValue(v)
		if err != nil {
			return Filter{}, domain.NewInvalidFilter(KeyBrand, err.Error())
		}
		f.brand = s
	}

	numeric := []struct {
		key string
		dst **float64
	}{
		{KeyPriceMin, &f.priceMin},
		{KeyPriceMax, &f.priceMax},
		{KeyRatingMin, &f.ratingMin},
	}
	for _, n := range numeric {
		v, ok := raw[n.key]
		if !ok || v == nil {
			continue
		}
		x, err := numberValue(v)
		if err != nil {
			return Filter{}, domain.NewInvalidFilter(n.key, err.Error())
		}
		*n.dst = &x
	}

	return f, nil
}

func stringValue(v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(s), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func numberValue(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}
