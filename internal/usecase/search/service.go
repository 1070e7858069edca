package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/request"
	"github.com/shoplens/shopsearch/internal/domain/search/result"
	"github.com/shoplens/shopsearch/internal/domain/search/sortmode"
	"github.com/shoplens/shopsearch/internal/similarity"
)

// Config holds ranking knobs.
type Config struct {
	// EmbedTimeout bounds the provider call for query vectorization. Zero
	// means no extra bound beyond the request context.
	EmbedTimeout time.Duration
	// Denylist terms short-circuit a query to an empty page.
	Denylist []string
}

// Metrics holds optional counters; nil fields disable recording.
type Metrics struct {
	// SearchTotal counts searches, labeled by sort_mode and semantic ("true"/"false").
	SearchTotal *prometheus.CounterVec
	// FallbackTotal counts searches degraded by an embedding failure.
	FallbackTotal prometheus.Counter
	// ExcludedTotal counts candidates left out of semantic ranking for
	// lack of a stored embedding.
	ExcludedTotal prometheus.Counter
}

// Service ranks catalog products for search and recommendation queries.
type Service struct {
	catalog      Catalog
	embed        Embedder
	embedTimeout time.Duration
	denylist     map[string]struct{}
	metrics      Metrics
	logger       *zap.Logger
}

// New creates a search service.
func New(catalog Catalog, embed Embedder, cfg Config, m Metrics, logger *zap.Logger) *Service {
	deny := make(map[string]struct{}, len(cfg.Denylist))
	for _, term := range cfg.Denylist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			deny[term] = struct{}{}
		}
	}
	return &Service{
		catalog:      catalog,
		embed:        embed,
		embedTimeout: cfg.EmbedTimeout,
		denylist:     deny,
		metrics:      m,
		logger:       logger,
	}
}

// Search runs the full ranking pipeline: filter, score, order, paginate.
// Embedding failures degrade to a non-semantic ordering instead of failing
// the request.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	if req.HasQuery() && s.isProhibited(req.Query()) {
		s.logger.Info("Query blocked by denylist")
		s.recordSearch(req.SortMode(), false)
		return result.NewPage([]result.Result{}, 0, false), nil
	}

	candidates, err := s.catalog.FetchCandidates(ctx, req.Filters())
	if err != nil {
		return result.Page{}, fmt.Errorf("fetch candidates: %w", err)
	}

	if !req.HasQuery() {
		hits := unscoredHits(candidates)
		orderByField(hits, req.SortMode())
		s.recordSearch(req.SortMode(), false)
		return result.NewPage(paginate(hits, req.Offset(), req.Limit()), len(hits), false), nil
	}

	queryVec, err := s.embedQuery(ctx, req.Query())
	if err != nil {
		mode := s.fallbackMode(req)
		s.logger.Warn("Query embedding failed, degrading to non-semantic order",
			zap.String("fallback_mode", string(mode)), zap.Error(err))
		if s.metrics.FallbackTotal != nil {
			s.metrics.FallbackTotal.Inc()
		}

		hits := unscoredHits(candidates)
		orderByField(hits, mode)
		s.recordSearch(mode, false)
		return result.NewPage(paginate(hits, req.Offset(), req.Limit()), len(hits), false), nil
	}

	hits, err := s.scoreAndOrder(ctx, queryVec, candidates, req)
	if err != nil {
		return result.Page{}, err
	}

	s.recordSearch(req.SortMode(), true)
	return result.NewPage(paginate(hits, req.Offset(), req.Limit()), len(hits), true), nil
}

// Similar ranks the catalog against a stored product vector. An anchor
// without an embedding yields an empty page; only a missing anchor is an
// error.
func (s *Service) Similar(ctx context.Context, req *request.SimilarRequest) (result.Page, error) {
	if _, err := s.catalog.Get(ctx, req.ProductID()); err != nil {
		return result.Page{}, fmt.Errorf("get anchor product: %w", err)
	}

	anchorVec, err := s.catalog.GetEmbedding(ctx, req.ProductID())
	if err != nil {
		s.logger.Debug("Anchor product has no embedding",
			zap.String("product_id", req.ProductID()))
		return result.NewPage([]result.Result{}, 0, false), nil
	}

	candidates, err := s.catalog.FetchCandidates(ctx, req.Filters())
	if err != nil {
		return result.Page{}, fmt.Errorf("fetch candidates: %w", err)
	}

	peers := candidates[:0]
	for _, p := range candidates {
		if p.ID() != req.ProductID() {
			peers = append(peers, p)
		}
	}

	hits, err := s.rankSemantic(ctx, anchorVec, peers, req.MinScore())
	if err != nil {
		return result.Page{}, err
	}

	total := len(hits)
	if len(hits) > req.Limit() {
		hits = hits[:req.Limit()]
	}
	return result.NewPage(hits, total, true), nil
}

// GetProduct returns a single product by ID.
func (s *Service) GetProduct(ctx context.Context, id string) (product.Product, error) {
	return s.catalog.Get(ctx, id)
}

// embedQuery vectorizes the query under the configured timeout.
func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.embedTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.embedTimeout)
		defer cancel()
	}
	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return res.Embedding, nil
}

// scoreAndOrder applies similarity scoring and the request's ordering.
// Products without embeddings are excluded when similarity is the primary
// order; under a field sort they stay in, unscored.
func (s *Service) scoreAndOrder(
	ctx context.Context, queryVec []float32,
	candidates []product.Product, req *request.Request,
) ([]result.Result, error) {
	if req.SortMode() == sortmode.Relevance {
		return s.rankSemantic(ctx, queryVec, candidates, req.MinScore())
	}

	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID())
	}

	embeddings, err := s.catalog.GetEmbeddings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch embeddings: %w", err)
	}

	hits := make([]result.Result, 0, len(candidates))
	for _, p := range candidates {
		vec, ok := embeddings[p.ID()]
		if !ok {
			hits = append(hits, result.NewUnscored(p))
			continue
		}
		score, err := similarity.Cosine(queryVec, vec)
		if err != nil {
			return nil, fmt.Errorf("score product %s: %w", p.ID(), err)
		}
		if req.MinScore() > 0 && score < req.MinScore() {
			continue
		}
		hits = append(hits, result.New(p, score))
	}

	orderByField(hits, req.SortMode())
	return hits, nil
}

// rankSemantic orders candidates purely by similarity to the given vector.
// Candidates without embeddings are left out of the result set.
func (s *Service) rankSemantic(
	ctx context.Context, queryVec []float32,
	candidates []product.Product, minScore float64,
) ([]result.Result, error) {
	byID := make(map[string]product.Product, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, p := range candidates {
		byID[p.ID()] = p
		ids = append(ids, p.ID())
	}

	embeddings, err := s.catalog.GetEmbeddings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch embeddings: %w", err)
	}

	scorable := make([]similarity.Candidate, 0, len(embeddings))
	for _, id := range ids {
		if vec, ok := embeddings[id]; ok {
			scorable = append(scorable, similarity.Candidate{ID: id, Vector: vec})
		}
	}
	if excluded := len(ids) - len(scorable); excluded > 0 {
		s.logger.Debug("Candidates without embeddings excluded from semantic ranking",
			zap.Int("excluded", excluded))
		if s.metrics.ExcludedTotal != nil {
			s.metrics.ExcludedTotal.Add(float64(excluded))
		}
	}

	ranked, err := similarity.Rank(queryVec, scorable, func(a, b similarity.Scored) bool {
		pa, pb := byID[a.ID], byID[b.ID]
		return pa.Popularity() > pb.Popularity()
	})
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	hits := make([]result.Result, 0, len(ranked))
	for _, r := range ranked {
		if minScore > 0 && r.Score < minScore {
			continue
		}
		hits = append(hits, result.New(byID[r.ID], r.Score))
	}
	return hits, nil
}

// fallbackMode picks the ordering used when query vectorization fails: the
// caller's explicit field sort if there is one, popularity otherwise.
func (s *Service) fallbackMode(req *request.Request) sortmode.Mode {
	if req.SortExplicit() && req.SortMode().IsFieldSort() {
		return req.SortMode()
	}
	return sortmode.PopularityDesc
}

func (s *Service) isProhibited(query string) bool {
	if len(s.denylist) == 0 {
		return false
	}
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		if _, hit := s.denylist[tok]; hit {
			return true
		}
	}
	return false
}

func (s *Service) recordSearch(m sortmode.Mode, semantic bool) {
	if s.metrics.SearchTotal == nil {
		return
	}
	s.metrics.SearchTotal.WithLabelValues(string(m), fmt.Sprintf("%t", semantic)).Inc()
}

func unscoredHits(products []product.Product) []result.Result {
	hits := make([]result.Result, 0, len(products))
	for _, p := range products {
		hits = append(hits, result.NewUnscored(p))
	}
	return hits
}
