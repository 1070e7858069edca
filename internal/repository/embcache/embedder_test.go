package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shoplens/shopsearch/internal/domain"
)

func TestEmbed_MissThenHit(t *testing.T) {
	c, inner, _ := newTestEmbedder(t, 0)
	ctx := context.Background()

	first, err := c.Embed(ctx, "wireless headphones")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 7 {
		t.Errorf("miss should report inner token usage, got %d", first.TotalTokens)
	}

	second, err := c.Embed(ctx, "wireless headphones")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit should report zero tokens, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 3 || second.Embedding[0] != 1 {
		t.Errorf("cached vector mismatch: %v", second.Embedding)
	}
}

func TestEmbed_DifferentTextsDifferentKeys(t *testing.T) {
	c, inner, _ := newTestEmbedder(t, 0)
	ctx := context.Background()

	if _, err := c.Embed(ctx, "red shoes"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Embed(ctx, "blue shoes"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("inner called %d times, want 2", inner.calls)
	}
}

func TestEmbed_UsesTTLWhenConfigured(t *testing.T) {
	c, _, store := newTestEmbedder(t, time.Minute)

	var gotTTL time.Duration
	store.setTTLFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		gotTTL = ttl
		if !strings.HasPrefix(key, "shop:emb_cache:") {
			t.Errorf("key = %q, want shop:emb_cache: prefix", key)
		}
		return nil
	}
	store.setFn = func(context.Context, string, []byte) error {
		t.Fatal("Set without TTL not expected")
		return nil
	}

	if _, err := c.Embed(context.Background(), "q"); err != nil {
		t.Fatal(err)
	}
	if gotTTL != time.Minute {
		t.Errorf("ttl = %v, want 1m", gotTTL)
	}
}

func TestEmbed_InnerErrorPropagates(t *testing.T) {
	c, inner, _ := newTestEmbedder(t, 0)
	boom := errors.New("provider down")
	inner.embedFn = func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, boom
	}

	_, err := c.Embed(context.Background(), "q")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestEmbed_CorruptCacheFallsThrough(t *testing.T) {
	c, inner, store := newTestEmbedder(t, 0)
	ctx := context.Background()

	if _, err := c.Embed(ctx, "q"); err != nil {
		t.Fatal(err)
	}
	for k := range store.data {
		store.data[k] = []byte("odd")
	}

	if _, err := c.Embed(ctx, "q"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("corrupt cache entry should re-embed, inner calls = %d", inner.calls)
	}
}
