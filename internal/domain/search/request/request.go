package request

import (
	"fmt"
	"strings"

	"github.com/shoplens/shopsearch/internal/domain/search/filter"
	"github.com/shoplens/shopsearch/internal/domain/search/sortmode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1024
	DefaultLimit   = 20
	MaxLimit       = 100
)

// Request is a validated search query.
type Request struct {
	query        string
	sortMode     sortmode.Mode
	sortExplicit bool
	filters      filter.Filter
	offset       int
	limit        int
	minScore     float64
}

// New validates and normalizes search parameters.
// An empty sort mode defaults to relevance when query text is present and to
// popularity otherwise; the request remembers whether the caller chose the
// mode explicitly so ranking fallbacks can honor it.
func New(
	query string,
	m sortmode.Mode,
	filters filter.Filter,
	offset, limit int,
	minScore float64,
) (Request, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}

	explicit := m != ""
	if !explicit {
		if query != "" {
			m = sortmode.Relevance
		} else {
			m = sortmode.PopularityDesc
		}
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid sort mode: %q", m)
	}

	if offset < 0 {
		return Request{}, fmt.Errorf("offset must be non-negative")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if minScore < 0 || minScore > 1 {
		return Request{}, fmt.Errorf("min_score must be between 0 and 1")
	}

	return Request{
		query:        query,
		sortMode:     m,
		sortExplicit: explicit,
		filters:      filters,
		offset:       offset,
		limit:        limit,
		minScore:     minScore,
	}, nil
}

// Query returns the free-text query ("" for browse requests).
func (r *Request) Query() string { return r.query }

// HasQuery reports whether free text was given.
func (r *Request) HasQuery() bool { return r.query != "" }

// SortMode returns the effective ordering criterion.
func (r *Request) SortMode() sortmode.Mode { return r.sortMode }

// SortExplicit reports whether the caller chose the sort mode rather than
// receiving the default.
func (r *Request) SortExplicit() bool { return r.sortExplicit }

// Filters returns the structured constraint set.
func (r *Request) Filters() filter.Filter { return r.filters }

// Offset returns the zero-based pagination offset.
func (r *Request) Offset() int { return r.offset }

// Limit returns the maximum results per page.
func (r *Request) Limit() int { return r.limit }

// MinScore returns the minimum similarity threshold (0 disables it).
func (r *Request) MinScore() float64 { return r.minScore }
