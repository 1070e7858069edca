package similarity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shopsearch/internal/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"scale invariant", []float32{2, 0}, []float32{5, 0}, 1.0},
		{"zero query", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"zero candidate", []float32{1, 1}, []float32{0, 0}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 0}, []float32{1, 0, 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	query := []float32{1, 0}
	out, err := Rank(query, []Candidate{
		{ID: "b", Vector: []float32{0, 1}},
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "c", Vector: []float32{0.9, 0.1}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, "b", out[2].ID)
	assert.InDelta(t, 1.0, out[0].Score, 1e-9)
	assert.InDelta(t, 0.0, out[2].Score, 1e-9)
}

func TestRank_TieBreak(t *testing.T) {
	query := []float32{1, 0}
	popularity := map[string]int64{"x": 10, "y": 900}

	out, err := Rank(query, []Candidate{
		{ID: "x", Vector: []float32{3, 0}},
		{ID: "y", Vector: []float32{7, 0}},
	}, func(a, b Scored) bool {
		return popularity[a.ID] > popularity[b.ID]
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "y", out[0].ID, "popularity should break the exact tie")
}

func TestRank_StableWithoutTieBreak(t *testing.T) {
	query := []float32{1, 0}
	out, err := Rank(query, []Candidate{
		{ID: "first", Vector: []float32{1, 0}},
		{ID: "second", Vector: []float32{2, 0}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", out[0].ID)
	assert.Equal(t, "second", out[1].ID)
}

func TestRank_MismatchNamesCandidate(t *testing.T) {
	_, err := Rank([]float32{1, 0}, []Candidate{
		{ID: "ok", Vector: []float32{0, 1}},
		{ID: "bad", Vector: []float32{1, 2, 3}},
	}, nil)
	require.Error(t, err)

	var dme *domain.DimensionMismatchError
	require.True(t, errors.As(err, &dme))
	assert.Equal(t, "bad", dme.ID)
	assert.Equal(t, 2, dme.Want)
	assert.Equal(t, 3, dme.Got)
}

func TestRank_Empty(t *testing.T) {
	out, err := Rank([]float32{1, 0}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
