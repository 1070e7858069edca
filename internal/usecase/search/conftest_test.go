package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
	"github.com/shoplens/shopsearch/internal/domain/search/result"
)

// mockCatalog is an in-memory catalog for tests: products in insertion
// order, embeddings keyed by ID.
type mockCatalog struct {
	products   []product.Product
	embeddings map[string][]float32

	fetchErr error
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{embeddings: map[string][]float32{}}
}

func (m *mockCatalog) add(p product.Product, vec []float32) {
	m.products = append(m.products, p)
	if vec != nil {
		m.embeddings[p.ID()] = vec
	}
}

func (m *mockCatalog) Get(_ context.Context, id string) (product.Product, error) {
	for _, p := range m.products {
		if p.ID() == id {
			return p, nil
		}
	}
	return product.Product{}, domain.ErrProductNotFound
}

func (m *mockCatalog) FetchCandidates(_ context.Context, f filter.Filter) ([]product.Product, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var out []product.Product
	for _, p := range m.products {
		if f.Matches(&p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) GetEmbedding(_ context.Context, id string) ([]float32, error) {
	if vec, ok := m.embeddings[id]; ok {
		return vec, nil
	}
	return nil, domain.ErrNoEmbedding
}

func (m *mockCatalog) GetEmbeddings(_ context.Context, ids []string) (map[string][]float32, error) {
	out := map[string][]float32{}
	for _, id := range ids {
		if vec, ok := m.embeddings[id]; ok {
			out[id] = vec
		}
	}
	return out, nil
}

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{1, 0}}, nil
}

func newTestService(t *testing.T, cat *mockCatalog, emb *mockEmbedder, cfg Config) *Service {
	t.Helper()
	return New(cat, emb, cfg, Metrics{}, zap.NewNop())
}

func catalogProduct(t *testing.T, id string, price, rating float64, popularity int64) product.Product {
	t.Helper()
	return product.Reconstruct(
		id, "Product "+id, "", "", "Gear", "Acme",
		price, 0, 0, rating, popularity, "", "",
	)
}

func resultIDs(hits []result.Result) []string {
	ids := make([]string, len(hits))
	for i := range hits {
		ids[i] = hits[i].Product().ID()
	}
	return ids
}
