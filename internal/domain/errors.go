package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound signals a missing product.
	ErrProductNotFound = errors.New("product not found")
	// ErrNoEmbedding signals a product without a stored embedding.
	ErrNoEmbedding = errors.New("no embedding stored")
	// ErrInvalidFilter signals a malformed structured constraint.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrInvalidRequest signals an otherwise malformed search request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDimensionMismatch signals an embedding dimensionality defect.
	// An ingestion-time bug surfacing at query time; never repaired silently.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// InvalidFilterError wraps ErrInvalidFilter with the offending filter key.
type InvalidFilterError struct {
	Key    string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("%s: key %q: %s", ErrInvalidFilter.Error(), e.Key, e.Reason)
}

func (e *InvalidFilterError) Unwrap() error { return ErrInvalidFilter }

// NewInvalidFilter creates an invalid filter error for a single key.
func NewInvalidFilter(key, reason string) error {
	return &InvalidFilterError{Key: key, Reason: reason}
}

// DimensionMismatchError wraps ErrDimensionMismatch with both dimensions.
type DimensionMismatchError struct {
	Want int
	Got  int
	ID   string
}

func (e *DimensionMismatchError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: product %s: want %d, got %d",
			ErrDimensionMismatch.Error(), e.ID, e.Want, e.Got)
	}
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error for a candidate.
func NewDimensionMismatch(id string, want, got int) error {
	return &DimensionMismatchError{ID: id, Want: want, Got: got}
}
