package activity

import (
	"context"
	"fmt"
	"time"
)

// store is the consumer interface for activity counters (ISP).
type store interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Window is how long raw activity counters are retained.
const Window = 30 * 24 * time.Hour

// Repo tracks raw interaction counters per product and action. Counters are
// append-only within the retention window; the popularity score on the
// product itself is maintained separately.
type Repo struct {
	store  store
	prefix string
}

// New creates an activity repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Record increments the counter for one interaction. The retention TTL is
// set only on first touch so the window is anchored at the first event.
func (r *Repo) Record(ctx context.Context, productID, action string) error {
	key := r.counterKey(productID, action)
	if err := r.store.IncrBy(ctx, key, 1); err != nil {
		return fmt.Errorf("incr activity %s: %w", key, err)
	}
	if err := r.store.Expire(ctx, key, Window, true); err != nil {
		return fmt.Errorf("expire activity %s: %w", key, err)
	}
	return nil
}

func (r *Repo) counterKey(productID, action string) string {
	return r.prefix + "activity:" + action + ":" + productID
}
