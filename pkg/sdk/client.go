package shopsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoplens/shopsearch/internal/db"
	dbBolt "github.com/shoplens/shopsearch/internal/db/bolt"
	dbRedis "github.com/shoplens/shopsearch/internal/db/redis"
	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/request"
	"github.com/shoplens/shopsearch/internal/domain/search/result"
	activityrepo "github.com/shoplens/shopsearch/internal/repository/activity"
	catalogrepo "github.com/shoplens/shopsearch/internal/repository/catalog"
	activityuc "github.com/shoplens/shopsearch/internal/usecase/activity"
	healthuc "github.com/shoplens/shopsearch/internal/usecase/health"
	searchuc "github.com/shoplens/shopsearch/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "shopsearch:"
)

// Internal interfaces, substituted in tests.
type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
	Similar(ctx context.Context, req *request.SimilarRequest) (result.Page, error)
	GetProduct(ctx context.Context, id string) (product.Product, error)
}

type activityUseCase interface {
	Track(ctx context.Context, productID, action string) (int64, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the shopsearch SDK entry point.
type Client struct {
	store       db.Store
	searchSvc   searchUseCase
	activitySvc activityUseCase
	healthSvc   healthUseCase
	obs         *observer
}

// New creates a shopsearch Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: defaultKeyPrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("shopsearch: database required (use WithRedis or WithBolt)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("shopsearch: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("shopsearch: create redis store: %w", err)
		}
		return s, nil
	case "bolt":
		s, err := dbBolt.NewStore(dbBolt.Config{
			Path: cfg.path,
		})
		if err != nil {
			return nil, fmt.Errorf("shopsearch: create bolt store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("shopsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	catalog := catalogrepo.New(store, cfg.keyPrefix)
	activityLog := activityrepo.New(store, cfg.keyPrefix)

	// Ranking runs without an embedder: free-text queries then fall back
	// to popularity ordering.
	var domEmb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}
	if cfg.instruction != "" {
		domEmb = domain.NewInstructionEmbedder(domEmb, cfg.instruction)
	}

	// Internal services log through zap; SDK-level observability goes
	// through the observer instead.
	internalLog := zap.NewNop()

	searchSvc := searchuc.New(catalog, domEmb, searchuc.Config{
		EmbedTimeout: cfg.embedTimeout,
		Denylist:     cfg.denylist,
	}, searchuc.Metrics{}, internalLog)

	activitySvc := activityuc.New(catalog, activityLog, internalLog)
	healthSvc := healthuc.New(store, nil, catalog)

	return &Client{
		store:       store,
		searchSvc:   searchSvc,
		activitySvc: activitySvc,
		healthSvc:   healthSvc,
		obs:         obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
