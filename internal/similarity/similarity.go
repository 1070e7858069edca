// Package similarity implements cosine scoring and ranking over embedding
// vectors. It is pure: no storage, no transport, no logging.
package similarity

import (
	"math"
	"sort"

	"github.com/shoplens/shopsearch/internal/domain"
)

// Candidate is one vector entering a ranking pass.
type Candidate struct {
	ID     string
	Vector []float32
}

// Scored is a candidate with its computed similarity.
type Scored struct {
	ID    string
	Score float64
}

// TieBreak orders two candidates whose scores compare equal.
type TieBreak func(a, b Scored) bool

// Cosine computes cosine similarity between two vectors of equal dimension.
// A zero-norm operand yields 0 rather than NaN. Mismatched dimensions are a
// data integrity fault and return a DimensionMismatchError.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.NewDimensionMismatch("", len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Rank scores every candidate against the query vector and returns them in
// descending score order. Equal scores fall through to the tie comparator;
// the sort is stable, so candidates tied under the comparator too keep their
// input order. A candidate whose dimension differs from the query aborts the
// whole pass with a DimensionMismatchError naming the candidate.
func Rank(query []float32, candidates []Candidate, tie TieBreak) ([]Scored, error) {
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			return nil, domain.NewDimensionMismatch(c.ID, len(query), len(c.Vector))
		}
		s, err := Cosine(query, c.Vector)
		if err != nil {
			return nil, err
		}
		scored = append(scored, Scored{ID: c.ID, Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if tie != nil {
			return tie(scored[i], scored[j])
		}
		return false
	})
	return scored, nil
}
