package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockStore struct {
	incrFn   func(ctx context.Context, key string, val int64) error
	expireFn func(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) error {
	if m.incrFn != nil {
		return m.incrFn(ctx, key, val)
	}
	return nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl, nx)
	}
	return nil
}

func TestRecord(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "shop:")

	var incrKey string
	ms.incrFn = func(_ context.Context, key string, val int64) error {
		incrKey = key
		if val != 1 {
			t.Errorf("val = %d, want 1", val)
		}
		return nil
	}

	var expireNX bool
	var expireTTL time.Duration
	ms.expireFn = func(_ context.Context, key string, ttl time.Duration, nx bool) error {
		if key != incrKey {
			t.Errorf("expire key %q != incr key %q", key, incrKey)
		}
		expireNX = nx
		expireTTL = ttl
		return nil
	}

	if err := repo.Record(context.Background(), "p1", "click"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if incrKey != "shop:activity:click:p1" {
		t.Errorf("key = %q", incrKey)
	}
	if !expireNX {
		t.Error("expected NX expire so the window anchors at first event")
	}
	if expireTTL != Window {
		t.Errorf("ttl = %v, want %v", expireTTL, Window)
	}
}

func TestRecord_IncrError(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "shop:")

	boom := errors.New("down")
	ms.incrFn = func(context.Context, string, int64) error { return boom }

	if err := repo.Record(context.Background(), "p1", "view"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
