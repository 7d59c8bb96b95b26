package cartclient

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shopcart/internal/domain"
	"go.uber.org/zap"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	in := identityRecord{AnonymousID: "anon-1-ab"}
	if err := store.Save(identityKey, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	var out identityRecord
	if err := store.Load(identityKey, &out); err != nil {
		t.Fatalf("load: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	if err := store.Delete(identityKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Load(identityKey, &out); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStore_DeleteMissingIsNoop(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Delete("nothing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestCartCache_CorruptDataLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, cacheKey+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	cache := &cartCache{store: store, logger: zap.NewNop()}
	st := cache.Load("anon-1-ab")
	if len(st.Cart.Items) != 0 || st.Cart.TotalCents != 0 {
		t.Fatalf("corrupt cache should load empty, got %+v", st)
	}
	if st.Cart.OwnerKey != "anon-1-ab" {
		t.Fatalf("owner not set: %q", st.Cart.OwnerKey)
	}
}

func TestCartCache_ForeignOwnerLoadsEmpty(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	cache := &cartCache{store: store, logger: zap.NewNop()}

	st := State{Cart: domain.EmptyCart("anon-1-ab")}
	st.Cart.Add(domain.LineItem{ProductID: "p", PriceCents: 100, Quantity: 1})
	cache.Save(st)

	got := cache.Load("acct1")
	if len(got.Cart.Items) != 0 {
		t.Fatalf("foreign owner cart leaked: %+v", got.Cart.Items)
	}
}
