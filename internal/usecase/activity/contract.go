package activity

import "context"

// PopularityWriter bumps the stored popularity score of a product.
type PopularityWriter interface {
	IncrPopularity(ctx context.Context, id string, delta int64) (int64, error)
}

// Recorder appends raw interaction counters.
type Recorder interface {
	Record(ctx context.Context, productID, action string) error
}
