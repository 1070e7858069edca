package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shoplens/shopsearch/internal/db"
	"github.com/shoplens/shopsearch/internal/domain"
	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
)

// store is the consumer interface for catalog persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo persists products as hashes and embeddings as separate binary keys,
// both under a configurable key prefix.
type Repo struct {
	store  store
	prefix string
}

// New creates a catalog repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

// Upsert creates or updates a product and its embedding in one call so the
// stored vector never describes stale text. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *product.Product, vector []float32) (bool, error) {
	key := r.productKey(p.ID())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(p)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}
	if vector != nil {
		if err := r.store.Set(ctx, r.embKey(p.ID()), vectorToBytes(vector)); err != nil {
			return false, fmt.Errorf("set embedding %s: %w", p.ID(), err)
		}
	}

	return !exists, nil
}

// UpsertBatch stores many products in one pipelined write, then their
// embeddings.
func (r *Repo) UpsertBatch(ctx context.Context, entries []product.Indexed) error {
	if len(entries) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(entries))
	for i := range entries {
		items[i] = db.HashSetItem{
			Key:    r.productKey(entries[i].Product.ID()),
			Fields: buildHashFields(&entries[i].Product),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset batch: %w", err)
	}

	for i := range entries {
		if entries[i].Vector == nil {
			continue
		}
		id := entries[i].Product.ID()
		if err := r.store.Set(ctx, r.embKey(id), vectorToBytes(entries[i].Vector)); err != nil {
			return fmt.Errorf("set embedding %s: %w", id, err)
		}
	}
	return nil
}

// Get returns a product by ID.
func (r *Repo) Get(ctx context.Context, id string) (product.Product, error) {
	key := r.productKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return product.Product{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return product.Product{}, domain.ErrProductNotFound
	}
	return parseHashFields(id, m), nil
}

// FetchCandidates returns all products satisfying the filter, in stable key
// order. The catalog fits in one scan; ordering happens upstream.
func (r *Repo) FetchCandidates(ctx context.Context, f filter.Filter) ([]product.Product, error) {
	keys, err := r.store.Scan(ctx, r.productKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall batch: %w", err)
	}

	out := make([]product.Product, 0, len(maps))
	for i, m := range maps {
		if len(m) == 0 {
			continue
		}
		p := parseHashFields(r.extractID(keys[i]), m)
		if f.Matches(&p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Count returns the number of stored products.
func (r *Repo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.productKey("*"))
	if err != nil {
		return 0, fmt.Errorf("scan products: %w", err)
	}
	return len(keys), nil
}

// GetEmbedding returns the stored vector for a product.
func (r *Repo) GetEmbedding(ctx context.Context, id string) ([]float32, error) {
	raw, err := r.store.Get(ctx, r.embKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNoEmbedding)
		}
		return nil, fmt.Errorf("get embedding %s: %w", id, err)
	}
	v := bytesToVector(raw)
	if v == nil {
		return nil, fmt.Errorf("product %s: corrupt embedding payload", id)
	}
	return v, nil
}

// GetEmbeddings returns the stored vectors for the given IDs. Products
// without an embedding are simply absent from the result map.
func (r *Repo) GetEmbeddings(ctx context.Context, ids []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(ids))
	for _, id := range ids {
		v, err := r.GetEmbedding(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNoEmbedding) {
				continue
			}
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

// PutEmbedding stores the vector for a product.
func (r *Repo) PutEmbedding(ctx context.Context, id string, vector []float32) error {
	if err := r.store.Set(ctx, r.embKey(id), vectorToBytes(vector)); err != nil {
		return fmt.Errorf("set embedding %s: %w", id, err)
	}
	return nil
}

// Delete removes a product and its embedding.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.productKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if err := r.store.Del(ctx, r.embKey(id)); err != nil {
		return fmt.Errorf("del embedding %s: %w", id, err)
	}
	return nil
}

// IncrPopularity bumps the popularity field and clamps the stored value to
// the domain ceiling. Returns the effective popularity after clamping.
func (r *Repo) IncrPopularity(ctx context.Context, id string, delta int64) (int64, error) {
	key := r.productKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return 0, domain.ErrProductNotFound
	}

	val, err := r.store.HIncrBy(ctx, key, "popularity", delta)
	if err != nil {
		return 0, fmt.Errorf("hincrby %s: %w", key, err)
	}

	clamped := val
	if clamped > product.MaxPopularity {
		clamped = product.MaxPopularity
	}
	if clamped < 0 {
		clamped = 0
	}
	if clamped != val {
		err := r.store.HSet(ctx, key, map[string]string{
			"popularity": strconv.FormatInt(clamped, 10),
		})
		if err != nil {
			return 0, fmt.Errorf("clamp popularity %s: %w", key, err)
		}
	}
	return clamped, nil
}

func (r *Repo) productKey(id string) string {
	return r.prefix + "product:" + id
}

func (r *Repo) embKey(id string) string {
	return r.prefix + "emb:" + id
}

func (r *Repo) extractID(key string) string {
	return strings.TrimPrefix(key, r.prefix+"product:")
}
