package search

import (
	"sort"

	"github.com/shoplens/shopsearch/internal/domain/search/result"
	"github.com/shoplens/shopsearch/internal/domain/search/sortmode"
)

// orderByField sorts hits by the structured field the mode names. When
// similarity scores are present they break field ties; unscored hits compare
// as zero and fall behind scored ones within a tie.
func orderByField(hits []result.Result, m sortmode.Mode) {
	key := fieldKey(m)
	sort.SliceStable(hits, func(i, j int) bool {
		ki, kj := key(&hits[i]), key(&hits[j])
		if ki != kj {
			return ki < kj
		}
		return hits[i].Score() > hits[j].Score()
	})
}

// fieldKey maps a sort mode to an ascending comparison key. Descending modes
// negate so a single ascending comparison covers all of them.
func fieldKey(m sortmode.Mode) func(r *result.Result) float64 {
	switch m {
	case sortmode.PriceAsc:
		return func(r *result.Result) float64 { return r.Product().Price() }
	case sortmode.PriceDesc:
		return func(r *result.Result) float64 { return -r.Product().Price() }
	case sortmode.RatingDesc:
		return func(r *result.Result) float64 { return -r.Product().Rating() }
	default:
		return func(r *result.Result) float64 { return -float64(r.Product().Popularity()) }
	}
}

// paginate slices one window out of the full ranked set. An offset past the
// end yields an empty window; the total always reflects the full set.
func paginate(hits []result.Result, offset, limit int) []result.Result {
	if offset >= len(hits) {
		return []result.Result{}
	}
	end := offset + limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end]
}
