package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
	"github.com/shoplens/shopsearch/internal/domain/search/request"
	"github.com/shoplens/shopsearch/internal/domain/search/result"
	"github.com/shoplens/shopsearch/internal/domain/search/sortmode"
	"github.com/shoplens/shopsearch/internal/metrics"
	activityuc "github.com/shoplens/shopsearch/internal/usecase/activity"
	healthuc "github.com/shoplens/shopsearch/internal/usecase/health"
	searchuc "github.com/shoplens/shopsearch/internal/usecase/search"
)

// Error response codes.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeInvalidFilter     = "invalid_filter"
	codeProductNotFound   = "product_not_found"
	codeEmbeddingProvider = "embedding_provider_error"
	codeDimensionMismatch = "dimension_mismatch"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the storefront HTTP API.
type Server struct {
	search        *searchuc.Service
	activity      *activityuc.Service
	health        *healthuc.Service
	apiKeys       []string
	defaultLimit  int
	maxLimit      int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	activity *activityuc.Service,
	health *healthuc.Service,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		activity: activity,
		health:   health,
		apiKeys:  apiKeys,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		invalidFilterHandler,
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, codeProductNotFound),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusInternalServerError, codeDimensionMismatch),
	}
	return s
}

// WithPageLimits sets the deployment's default and maximum page size.
// Unset or non-positive values fall back to the request package bounds,
// which also stay the absolute ceiling.
func (s *Server) WithPageLimits(defaultLimit, maxLimit int) *Server {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// clampLimit normalizes a client-supplied page size against the configured bounds.
func (s *Server) clampLimit(limit int) int {
	def, max := s.defaultLimit, s.maxLimit
	if def <= 0 {
		def = request.DefaultLimit
	}
	if max <= 0 {
		max = request.MaxLimit
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	// No Recoverer here: panic recovery lives in the outer JSON middleware,
	// which a router-level recoverer would shadow with a plain-text 500.
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(s.apiKeys))

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.SearchProducts)
		r.Get("/products/{id}", s.GetProduct)
		r.Get("/products/{id}/similar", s.SimilarProducts)
		r.Post("/activity", s.TrackActivity)
	})

	return r
}

// searchRequestBody is the POST /search payload.
type searchRequestBody struct {
	Query    string         `json:"query"`
	Sort     string         `json:"sort"`
	Filters  map[string]any `json:"filters"`
	Offset   int            `json:"offset"`
	Limit    int            `json:"limit"`
	MinScore float64        `json:"min_score"`
}

// productDTO is the wire shape of a catalog product.
type productDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        string   `json:"tags,omitempty"`
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Price       float64  `json:"price"`
	WasPrice    float64  `json:"was_price,omitempty"`
	Discount    float64  `json:"discount,omitempty"`
	Rating      float64  `json:"rating"`
	Popularity  int64    `json:"popularity"`
	ImageURL    string   `json:"image_url,omitempty"`
	ProductURL  string   `json:"product_url,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}

// searchResponse is the page envelope for search and similar results.
type searchResponse struct {
	Items    []productDTO `json:"items"`
	Total    int          `json:"total"`
	Offset   int          `json:"offset"`
	Limit    int          `json:"limit"`
	Semantic bool         `json:"semantic"`
}

// SearchProducts handles POST /api/v1/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	var body searchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	filters, err := filter.Parse(body.Filters)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	req, err := request.New(
		body.Query, sortmode.Mode(body.Sort), filters,
		body.Offset, s.clampLimit(body.Limit), body.MinScore,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(page, req.Offset(), req.Limit()))
}

// GetProduct handles GET /api/v1/products/{id}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := s.search.GetProduct(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, productToDTO(&p, nil))
}

// SimilarProducts handles GET /api/v1/products/{id}/similar.
// Filters arrive as query parameters (category, brand, price_min, price_max,
// rating_min) alongside limit and min_score.
func (s *Server) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()

	limit, err := intParam(q, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "limit must be an integer")
		return
	}
	minScore, err := floatParam(q, "min_score")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "min_score must be a number")
		return
	}

	filters, err := filter.Parse(filterParams(q))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// Zero passes through so the similar default applies, not the search one.
	if limit > 0 {
		limit = s.clampLimit(limit)
	}

	req, err := request.NewSimilar(id, filters, limit, minScore)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	page, err := s.search.Similar(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(page, 0, req.Limit()))
}

// activityRequestBody is the POST /activity payload.
type activityRequestBody struct {
	ProductID string `json:"product_id"`
	Action    string `json:"action"`
}

// activityResponse echoes the interaction with the updated popularity score.
type activityResponse struct {
	ProductID  string `json:"product_id"`
	Action     string `json:"action"`
	Popularity int64  `json:"popularity"`
}

// TrackActivity handles POST /api/v1/activity.
func (s *Server) TrackActivity(w http.ResponseWriter, r *http.Request) {
	var body activityRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if body.ProductID == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "product_id is required")
		return
	}

	popularity, err := s.activity.Track(r.Context(), body.ProductID, body.Action)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	metrics.ActivityTotal.WithLabelValues(body.Action).Inc()
	writeJSON(w, http.StatusOK, activityResponse{
		ProductID:  body.ProductID,
		Action:     body.Action,
		Popularity: popularity,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":   report.Status,
		"checks":   report.Checks,
		"products": report.Products,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func pageToResponse(page result.Page, offset, limit int) searchResponse {
	items := make([]productDTO, 0, len(page.Results()))
	for _, res := range page.Results() {
		var score *float64
		if res.Scored() {
			sc := res.Score()
			score = &sc
		}
		items = append(items, productToDTO(res.Product(), score))
	}
	return searchResponse{
		Items:    items,
		Total:    page.Total(),
		Offset:   offset,
		Limit:    limit,
		Semantic: page.Semantic(),
	}
}

func productToDTO(p *product.Product, score *float64) productDTO {
	return productDTO{
		ID:          p.ID(),
		Title:       p.Title(),
		Description: p.Description(),
		Tags:        p.Tags(),
		Category:    p.Category(),
		Brand:       p.Brand(),
		Price:       p.Price(),
		WasPrice:    p.WasPrice(),
		Discount:    p.Discount(),
		Rating:      p.Rating(),
		Popularity:  p.Popularity(),
		ImageURL:    p.ImageURL(),
		ProductURL:  p.ProductURL(),
		Score:       score,
	}
}

// filterParams lifts the recognized filter keys out of the query string.
func filterParams(q url.Values) map[string]any {
	raw := make(map[string]any)
	for _, key := range []string{
		filter.KeyCategory, filter.KeyBrand,
		filter.KeyPriceMin, filter.KeyPriceMax, filter.KeyRatingMin,
	} {
		if v := q.Get(key); v != "" {
			raw[key] = v
		}
	}
	return raw
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func floatParam(q url.Values, key string) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProductNotFound,
		domain.ErrInvalidFilter,
		domain.ErrInvalidRequest,
		domain.ErrDimensionMismatch,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidFilterHandler handles ErrInvalidFilter, naming the offending key.
func invalidFilterHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidFilter) {
		return false
	}
	var ife *domain.InvalidFilterError
	if errors.As(err, &ife) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":    codeInvalidFilter,
			"message": msg,
			"key":     ife.Key,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, codeInvalidFilter, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
