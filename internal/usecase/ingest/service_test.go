package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
)

type mockCatalog struct {
	stored     []product.Indexed
	embeddings map[string][]float32
	products   []product.Product

	upsertErr error
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{embeddings: map[string][]float32{}}
}

func (m *mockCatalog) UpsertBatch(_ context.Context, entries []product.Indexed) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.stored = append(m.stored, entries...)
	return nil
}

func (m *mockCatalog) FetchCandidates(_ context.Context, f filter.Filter) ([]product.Product, error) {
	var out []product.Product
	for _, p := range m.products {
		if f.Matches(&p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) GetEmbedding(_ context.Context, id string) ([]float32, error) {
	vec, ok := m.embeddings[id]
	if !ok {
		return nil, domain.ErrNoEmbedding
	}
	return vec, nil
}

func (m *mockCatalog) PutEmbedding(_ context.Context, id string, vec []float32) error {
	m.embeddings[id] = vec
	return nil
}

type mockBatchEmbedder struct {
	batchFn func(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
	calls   int
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.calls++
	if m.batchFn != nil {
		return m.batchFn(ctx, texts)
	}
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{1, 0}
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs, TotalTokens: len(texts) * 3}, nil
}

func newTestService(t *testing.T, cat *mockCatalog, emb *mockBatchEmbedder) *Service {
	t.Helper()
	return New(cat, emb, zap.NewNop())
}

const sampleCSV = `id,title,description,category,brand,price,rating,popularity
p1,Headphones,Wireless over-ear,Electronics,Sonance,279.99,4.7,920
p2,Yoga Mat,Non-slip 6mm,Sports,Calmio,34.99,4.1,300
`

func TestImportCSV(t *testing.T) {
	cat := newMockCatalog()
	emb := &mockBatchEmbedder{}
	svc := newTestService(t, cat, emb)

	report, err := svc.ImportCSV(context.Background(), strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Imported != 2 || report.Skipped != 0 || report.Embedded != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(cat.stored) != 2 {
		t.Fatalf("stored %d products", len(cat.stored))
	}
	if cat.stored[0].Product.ID() != "p1" || cat.stored[0].Vector == nil {
		t.Errorf("first entry = %+v", cat.stored[0])
	}
	if report.TokensUsed == 0 {
		t.Error("token usage not accumulated")
	}
}

func TestImportCSV_SkipsInvalidRows(t *testing.T) {
	csv := `id,title,description,category,price,rating,popularity
p1,Good,Solid build,Home,10,4,100
,MissingID,Solid build,Home,10,4,100
p3,BadPrice,Solid build,Home,cheap,4,100
p4,BadRating,Solid build,Home,10,9,100
`
	cat := newMockCatalog()
	svc := newTestService(t, cat, &mockBatchEmbedder{})

	report, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Imported != 1 || report.Skipped != 3 {
		t.Errorf("report = %+v", report)
	}
	if len(cat.stored) != 1 || cat.stored[0].Product.ID() != "p1" {
		t.Errorf("stored = %+v", cat.stored)
	}
}

func TestImportCSV_CleansExportedFields(t *testing.T) {
	csv := `id,title,description,category,price,was_price,tags
p1,Laptop,Thin and light,Electronics,"$1,299.00","$1,499.00","['laptop', 'work']"
`
	cat := newMockCatalog()
	svc := newTestService(t, cat, &mockBatchEmbedder{})

	report, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Imported != 1 || report.Skipped != 0 {
		t.Fatalf("report = %+v", report)
	}

	p := cat.stored[0].Product
	if p.Price() != 1299.00 {
		t.Errorf("price = %v", p.Price())
	}
	if p.WasPrice() != 1499.00 {
		t.Errorf("was_price = %v", p.WasPrice())
	}
	if p.Tags() != "laptop,work" {
		t.Errorf("tags = %q", p.Tags())
	}
}

func TestImportCSV_SkipsRowsMissingDescriptionOrCategory(t *testing.T) {
	csv := `id,title,description,category,price
p1,Widget,,Home,9.99
p2,Widget,A sturdy widget,,9.99
p3,Widget,A sturdy widget,Home,9.99
`
	cat := newMockCatalog()
	svc := newTestService(t, cat, &mockBatchEmbedder{})

	report, err := svc.ImportCSV(context.Background(), strings.NewReader(csv), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Imported != 1 || report.Skipped != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(cat.stored) != 1 || cat.stored[0].Product.ID() != "p3" {
		t.Errorf("stored = %+v", cat.stored)
	}
}

func TestImportCSV_MissingRequiredColumns(t *testing.T) {
	cat := newMockCatalog()
	svc := newTestService(t, cat, &mockBatchEmbedder{})

	_, err := svc.ImportCSV(context.Background(), strings.NewReader("title,price\nX,1\n"), nil)
	if err == nil {
		t.Fatal("expected error for csv without id column")
	}

	_, err = svc.ImportCSV(context.Background(), strings.NewReader("id,title,price\np1,X,1\n"), nil)
	if err == nil {
		t.Fatal("expected error for csv without description column")
	}
}

func TestImportCSV_EmbedFailureStoresVectorless(t *testing.T) {
	cat := newMockCatalog()
	emb := &mockBatchEmbedder{batchFn: func(context.Context, []string) (domain.BatchEmbeddingResult, error) {
		return domain.BatchEmbeddingResult{}, errors.New("provider down")
	}}
	svc := newTestService(t, cat, emb)

	report, err := svc.ImportCSV(context.Background(), strings.NewReader(sampleCSV), nil)
	if err != nil {
		t.Fatalf("embedding failure must not abort the import: %v", err)
	}

	if report.Imported != 2 || report.Embedded != 0 {
		t.Errorf("report = %+v", report)
	}
	for _, e := range cat.stored {
		if e.Vector != nil {
			t.Errorf("entry %s should be vectorless", e.Product.ID())
		}
	}
}

func TestImportCSV_BatchesLargeSets(t *testing.T) {
	var rows strings.Builder
	rows.WriteString("id,title,description,category,price\n")
	for i := 0; i < 5; i++ {
		rows.WriteString("p")
		rows.WriteByte(byte('0' + i))
		rows.WriteString(",Product,Plain,Misc,10\n")
	}

	cat := newMockCatalog()
	emb := &mockBatchEmbedder{}
	svc := newTestService(t, cat, emb).WithBatchSize(2)

	var progressCalls int
	report, err := svc.ImportCSV(context.Background(), strings.NewReader(rows.String()),
		func(done, total int) {
			progressCalls++
			if total != 5 {
				t.Errorf("total = %d, want 5", total)
			}
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if emb.calls != 3 {
		t.Errorf("embed calls = %d, want 3 batches", emb.calls)
	}
	if progressCalls != 3 {
		t.Errorf("progress calls = %d, want 3", progressCalls)
	}
	if report.Imported != 5 {
		t.Errorf("imported = %d", report.Imported)
	}
}

func TestSeed(t *testing.T) {
	cat := newMockCatalog()
	svc := newTestService(t, cat, &mockBatchEmbedder{})

	report, err := svc.Seed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Imported == 0 || report.Imported != report.Embedded {
		t.Errorf("report = %+v", report)
	}
	if len(cat.stored) != report.Imported {
		t.Errorf("stored %d, report says %d", len(cat.stored), report.Imported)
	}
}

func TestReembed(t *testing.T) {
	cat := newMockCatalog()
	cat.products = []product.Product{
		product.Reconstruct("a", "A", "", "", "", "", 1, 0, 0, 4, 10, "", ""),
		product.Reconstruct("b", "B", "", "", "", "", 1, 0, 0, 4, 10, "", ""),
	}
	svc := newTestService(t, cat, &mockBatchEmbedder{})

	report, err := svc.Reembed(context.Background(), true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Embedded != 2 {
		t.Errorf("embedded = %d", report.Embedded)
	}
	if len(cat.embeddings) != 2 {
		t.Errorf("stored %d embeddings", len(cat.embeddings))
	}
}

func TestReembed_OnlyMissingByDefault(t *testing.T) {
	cat := newMockCatalog()
	cat.products = []product.Product{
		product.Reconstruct("a", "A", "", "", "", "", 1, 0, 0, 4, 10, "", ""),
		product.Reconstruct("b", "B", "", "", "", "", 1, 0, 0, 4, 10, "", ""),
	}
	cat.embeddings["a"] = []float32{0.5, 0.5}

	emb := &mockBatchEmbedder{}
	svc := newTestService(t, cat, emb)

	report, err := svc.Reembed(context.Background(), false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Embedded != 1 {
		t.Errorf("embedded = %d, want only the vectorless product", report.Embedded)
	}
	if got := cat.embeddings["a"]; got[0] != 0.5 {
		t.Errorf("existing embedding was rewritten: %v", got)
	}
	if _, ok := cat.embeddings["b"]; !ok {
		t.Error("missing embedding was not generated")
	}
}

func TestReembed_ProviderFailureIsFatal(t *testing.T) {
	cat := newMockCatalog()
	cat.products = []product.Product{
		product.Reconstruct("a", "A", "", "", "", "", 1, 0, 0, 4, 10, "", ""),
	}
	emb := &mockBatchEmbedder{batchFn: func(context.Context, []string) (domain.BatchEmbeddingResult, error) {
		return domain.BatchEmbeddingResult{}, errors.New("provider down")
	}}
	svc := newTestService(t, cat, emb)

	if _, err := svc.Reembed(context.Background(), true, nil); err == nil {
		t.Fatal("expected error")
	}
}
