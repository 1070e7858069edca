package shopsearch

import (
	"context"
	"fmt"
	"time"
)

// TrackActivity applies one storefront interaction to a product and
// returns the product's new popularity score. The popularity bump is
// weighted by the action's intent strength (view=1 through purchase=10).
// An unknown action is ErrInvalidRequest.
func (c *Client) TrackActivity(ctx context.Context, productID string, action Action) (_ int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("track_activity", start, err) }()

	if productID == "" {
		return 0, fmt.Errorf("track activity: product id is required")
	}

	score, err := c.activitySvc.Track(ctx, productID, string(action))
	if err != nil {
		return 0, fmt.Errorf("track activity: %w", err)
	}
	return score, nil
}
