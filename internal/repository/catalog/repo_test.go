package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shoplens/shopsearch/internal/db"
	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
)

func TestUpsert_CreatesWithEmbedding(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotHashKey, gotEmbKey string
	var gotFields map[string]string
	ms.hsetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotHashKey = key
		gotFields = fields
		return nil
	}
	ms.setFn = func(_ context.Context, key string, value []byte) error {
		gotEmbKey = key
		if len(value) != 4*4 {
			t.Errorf("embedding payload = %d bytes, want 16", len(value))
		}
		return nil
	}

	p := testProduct(t, "p1")
	created, err := repo.Upsert(context.Background(), &p, testVector(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true for new product")
	}
	if gotHashKey != "shop:product:p1" {
		t.Errorf("hash key = %q", gotHashKey)
	}
	if gotEmbKey != "shop:emb:p1" {
		t.Errorf("embedding key = %q", gotEmbKey)
	}
	if gotFields["title"] != "Air Max" || gotFields["popularity"] != "500" {
		t.Errorf("unexpected fields: %v", gotFields)
	}
}

func TestUpsert_NilVectorSkipsEmbedding(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(context.Context, string) (bool, error) { return true, nil }
	ms.setFn = func(context.Context, string, []byte) error {
		t.Fatal("embedding write not expected")
		return nil
	}

	p := testProduct(t, "p1")
	created, err := repo.Upsert(context.Background(), &p, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false for existing product")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)

	p := testProduct(t, "p1")
	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "shop:product:p1" {
			t.Errorf("key = %q", key)
		}
		return buildHashFields(&p), nil
	}

	got, err := repo.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title() != p.Title() || got.Price() != p.Price() || got.Popularity() != p.Popularity() {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func TestFetchCandidates_AppliesFilter(t *testing.T) {
	repo, ms := newTestRepo(t)

	shoes := testProduct(t, "p1")
	book := func() map[string]string {
		return map[string]string{
			"title": "Dune", "category": "Books", "brand": "Ace",
			"price": "13.99", "rating": "4.8", "popularity": "870",
		}
	}()

	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "shop:product:*" {
			t.Errorf("pattern = %q", pattern)
		}
		return []string{"shop:product:p2", "shop:product:p1"}, nil
	}
	ms.hgetAllMultFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		// keys arrive sorted
		if keys[0] != "shop:product:p1" || keys[1] != "shop:product:p2" {
			t.Errorf("keys = %v", keys)
		}
		return []map[string]string{buildHashFields(&shoes), book}, nil
	}

	f, err := filter.Parse(map[string]any{"category": "books"})
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}

	got, err := repo.FetchCandidates(context.Background(), f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "p2" {
		t.Fatalf("expected only the book, got %d results", len(got))
	}
}

func TestGetEmbedding(t *testing.T) {
	repo, ms := newTestRepo(t)

	vec := testVector(8)
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if key != "shop:emb:p1" {
			return nil, db.ErrKeyNotFound
		}
		return vectorToBytes(vec), nil
	}

	got, err := repo.GetEmbedding(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 8 || got[3] != vec[3] {
		t.Errorf("vector round trip mismatch")
	}

	_, err = repo.GetEmbedding(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrNoEmbedding) {
		t.Fatalf("expected ErrNoEmbedding, got %v", err)
	}
}

func TestGetEmbeddings_SkipsMissing(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		if key == "shop:emb:a" {
			return vectorToBytes(testVector(4)), nil
		}
		return nil, db.ErrKeyNotFound
	}

	got, err := repo.GetEmbeddings(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 embedding, got %d", len(got))
	}
	if _, ok := got["a"]; !ok {
		t.Error("embedding for a missing")
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.Delete(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestIncrPopularity_ClampsAtCeiling(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(context.Context, string) (bool, error) { return true, nil }
	ms.hincrByFn = func(_ context.Context, _, field string, delta int64) (int64, error) {
		if field != "popularity" {
			t.Errorf("field = %q", field)
		}
		return 1005, nil
	}

	var clampWrite map[string]string
	ms.hsetFn = func(_ context.Context, _ string, fields map[string]string) error {
		clampWrite = fields
		return nil
	}

	val, err := repo.IncrPopularity(context.Background(), "p1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != 1000 {
		t.Errorf("val = %d, want clamped 1000", val)
	}
	if clampWrite["popularity"] != "1000" {
		t.Errorf("clamp write = %v", clampWrite)
	}
}

func TestIncrPopularity_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.IncrPopularity(context.Background(), "ghost", 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
