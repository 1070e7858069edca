package sortmode

// Mode is the caller-selected primary ordering criterion.
type Mode string

// Sort mode constants.
const (
	// Relevance orders by similarity score; the default when free text is given.
	Relevance      Mode = "relevance"
	PriceAsc       Mode = "price_asc"
	PriceDesc      Mode = "price_desc"
	RatingDesc     Mode = "rating_desc"
	PopularityDesc Mode = "popularity_desc"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	switch m {
	case Relevance, PriceAsc, PriceDesc, RatingDesc, PopularityDesc:
		return true
	}
	return false
}

// IsFieldSort reports whether the mode orders by a structured field rather
// than similarity.
func (m Mode) IsFieldSort() bool {
	return m.IsValid() && m != Relevance
}
