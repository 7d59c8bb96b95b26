package cart

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shopcart/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type fakeRedis struct {
	data map[string]string
	gets int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.gets++
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

type stubCartRepo struct {
	cart     *domain.Cart
	err      error
	getCalls int
	delKey   string
}

func (s *stubCartRepo) GetByOwner(_ context.Context, _ string) (*domain.Cart, error) {
	s.getCalls++
	return s.cart, s.err
}

func (s *stubCartRepo) AddLine(_ context.Context, _ string, _ domain.LineItem) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartRepo) RemoveLine(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartRepo) SetQuantity(_ context.Context, _, _ string, _ int) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartRepo) Clear(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartRepo) Merge(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartRepo) Delete(_ context.Context, key string) error {
	s.delKey = key
	return s.err
}

func testCart(owner string) *domain.Cart {
	c := domain.EmptyCart(owner)
	c.Add(domain.LineItem{ProductID: "8b7df143d91c716ecfa5fc17", Name: "Mug", PriceCents: 1299, Quantity: 2})
	return &c
}

func TestCachedGetReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &stubCartRepo{cart: testCart("user-1")}
	rdb := newFakeRedis()
	repo := NewCached(inner, rdb, zap.NewNop())

	got, err := repo.GetByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByOwner: %v", err)
	}
	if got.TotalCents != 2598 {
		t.Fatalf("unexpected cart %+v", got)
	}
	if inner.getCalls != 1 {
		t.Fatalf("expected one store read, got %d", inner.getCalls)
	}

	// Second read must be served from the cache.
	if _, err := repo.GetByOwner(ctx, "user-1"); err != nil {
		t.Fatalf("GetByOwner (cached): %v", err)
	}
	if inner.getCalls != 1 {
		t.Fatalf("expected cache hit, store reads = %d", inner.getCalls)
	}
}

func TestCachedGetCorruptEntryFallsThrough(t *testing.T) {
	ctx := context.Background()
	inner := &stubCartRepo{cart: testCart("user-1")}
	rdb := newFakeRedis()
	rdb.data[cacheKey("user-1")] = "{not json"
	repo := NewCached(inner, rdb, zap.NewNop())

	got, err := repo.GetByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByOwner: %v", err)
	}
	if got.OwnerKey != "user-1" || inner.getCalls != 1 {
		t.Fatalf("corrupt cache entry should fall through to the store")
	}
}

func TestCachedWriteRefreshesEntry(t *testing.T) {
	ctx := context.Background()
	inner := &stubCartRepo{cart: testCart("user-1")}
	rdb := newFakeRedis()
	repo := NewCached(inner, rdb, zap.NewNop())

	if _, err := repo.AddLine(ctx, "user-1", domain.LineItem{ProductID: "8b7df143d91c716ecfa5fc17", Quantity: 1}); err != nil {
		t.Fatalf("AddLine: %v", err)
	}

	raw, ok := rdb.data[cacheKey("user-1")]
	if !ok {
		t.Fatal("write did not refresh the cache entry")
	}
	var cached domain.Cart
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		t.Fatalf("cached entry not valid JSON: %v", err)
	}
	if cached.TotalCents != 2598 {
		t.Fatalf("cached cart out of date: %+v", cached)
	}
}

func TestCachedClearReplacesStaleEntry(t *testing.T) {
	ctx := context.Background()
	inner := &stubCartRepo{cart: testCart("user-1")}
	rdb := newFakeRedis()
	repo := NewCached(inner, rdb, zap.NewNop())

	// prime the cache with the full cart
	if _, err := repo.GetByOwner(ctx, "user-1"); err != nil {
		t.Fatalf("GetByOwner: %v", err)
	}

	// the store now holds an emptied cart (checkout path)
	emptied := domain.EmptyCart("user-1")
	inner.cart = &emptied
	if _, err := repo.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	got, err := repo.GetByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetByOwner after clear: %v", err)
	}
	if len(got.Items) != 0 || got.TotalCents != 0 {
		t.Fatalf("stale cart served after clear: %+v", got)
	}
	if inner.getCalls != 1 {
		t.Fatalf("expected the emptied cart from cache, store reads = %d", inner.getCalls)
	}
}

func TestCachedDeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &stubCartRepo{cart: testCart("anon-1")}
	rdb := newFakeRedis()
	rdb.data[cacheKey("anon-1")] = `{"ownerKey":"anon-1"}`
	repo := NewCached(inner, rdb, zap.NewNop())

	if err := repo.Delete(ctx, "anon-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := rdb.data[cacheKey("anon-1")]; ok {
		t.Fatal("delete left a stale cache entry behind")
	}
	if inner.delKey != "anon-1" {
		t.Fatalf("inner delete not called, got %q", inner.delKey)
	}
}
