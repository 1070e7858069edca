package activity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shoplens/shopsearch/internal/domain"
)

// Interaction weights: stronger intent moves popularity more.
const (
	ActionView      = "view"
	ActionClick     = "click"
	ActionAddToCart = "add_to_cart"
	ActionPurchase  = "purchase"
)

var actionWeights = map[string]int64{
	ActionView:      1,
	ActionClick:     2,
	ActionAddToCart: 5,
	ActionPurchase:  10,
}

// Service turns storefront interactions into popularity movement.
type Service struct {
	popularity PopularityWriter
	recorder   Recorder
	logger     *zap.Logger
}

// New creates an activity service. recorder can be nil.
func New(popularity PopularityWriter, recorder Recorder, logger *zap.Logger) *Service {
	return &Service{popularity: popularity, recorder: recorder, logger: logger}
}

// Track applies one interaction: the popularity score moves by the action's
// weight and the raw counter is recorded. Counter failures are logged, not
// surfaced; the popularity bump is the authoritative effect.
func (s *Service) Track(ctx context.Context, productID, action string) (int64, error) {
	weight, ok := actionWeights[action]
	if !ok {
		return 0, fmt.Errorf("unknown action %q: %w", action, domain.ErrInvalidRequest)
	}

	newScore, err := s.popularity.IncrPopularity(ctx, productID, weight)
	if err != nil {
		return 0, fmt.Errorf("bump popularity: %w", err)
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, productID, action); err != nil {
			s.logger.Warn("Failed to record activity counter",
				zap.String("product_id", productID),
				zap.String("action", action),
				zap.Error(err))
		}
	}

	return newScore, nil
}
