package cart

import (
	"context"
	"errors"
	"testing"

	"shopcart/internal/domain"
	"go.uber.org/zap"
)

type stubRepo struct {
	cart          *domain.Cart
	err           error
	lastAddOwner  string
	lastAddLine   domain.LineItem
	lastSetQty    int
	lastMergeFrom string
	lastMergeTo   string
	deleted       string
	clearCalls    int
	clearedOwner  string
}

func (s *stubRepo) GetByOwner(_ context.Context, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubRepo) AddLine(_ context.Context, ownerKey string, line domain.LineItem) (*domain.Cart, error) {
	s.lastAddOwner = ownerKey
	s.lastAddLine = line
	return s.cart, s.err
}

func (s *stubRepo) RemoveLine(_ context.Context, _, _ string) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubRepo) SetQuantity(_ context.Context, _, _ string, quantity int) (*domain.Cart, error) {
	s.lastSetQty = quantity
	return s.cart, s.err
}

func (s *stubRepo) Clear(_ context.Context, ownerKey string) (*domain.Cart, error) {
	s.clearCalls++
	s.clearedOwner = ownerKey
	return s.cart, s.err
}

func (s *stubRepo) Merge(_ context.Context, fromKey, toKey string) (*domain.Cart, error) {
	s.lastMergeFrom = fromKey
	s.lastMergeTo = toKey
	return s.cart, s.err
}

func (s *stubRepo) Delete(_ context.Context, ownerKey string) error {
	s.deleted = ownerKey
	return s.err
}

type stubProducts struct {
	product *domain.Product
	err     error
	lastID  string
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	s.lastID = id
	return s.product, s.err
}

type stubOrders struct {
	order *domain.Order
	err   error
	calls int
}

func (s *stubOrders) CreateFromCart(_ context.Context, _ string) (*domain.Order, error) {
	s.calls++
	return s.order, s.err
}

type stubPublisher struct {
	published []domain.Order
	err       error
}

func (s *stubPublisher) OrderPlaced(_ context.Context, o domain.Order) error {
	s.published = append(s.published, o)
	return s.err
}

const (
	validProduct = "8b7df143d91c716ecfa5fc17"
	accountKey   = "3f2c9d1e77aa4bd08c1f2e64"
)

func newService(repo *stubRepo, products *stubProducts, orders *stubOrders, pub Publisher) *Service {
	return New(repo, products, orders, pub, zap.NewNop())
}

func TestAddSnapshotsProduct(t *testing.T) {
	cart := domain.EmptyCart("anon-1-aa")
	repo := &stubRepo{cart: &cart}
	products := &stubProducts{product: &domain.Product{
		ID: validProduct, Name: "Mug", PriceCents: 1299, Image: "mug.png",
	}}
	svc := newService(repo, products, &stubOrders{}, nil)

	if _, err := svc.Add(context.Background(), "anon-1-aa", validProduct, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if products.lastID != validProduct {
		t.Fatalf("product lookup used %q", products.lastID)
	}
	want := domain.LineItem{ProductID: validProduct, Name: "Mug", PriceCents: 1299, Quantity: 2, Image: "mug.png"}
	if repo.lastAddLine != want {
		t.Fatalf("snapshot mismatch: %+v", repo.lastAddLine)
	}
}

func TestAddValidation(t *testing.T) {
	svc := newService(&stubRepo{}, &stubProducts{}, &stubOrders{}, nil)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "anon-1-aa", "not-hex", 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("malformed product id: got %v", err)
	}
	if _, err := svc.Add(ctx, "bad key!", validProduct, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("malformed owner key: got %v", err)
	}
	if _, err := svc.Add(ctx, "anon-1-aa", validProduct, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("zero quantity: got %v", err)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	svc := newService(&stubRepo{}, &stubProducts{err: domain.ErrNotFound}, &stubOrders{}, nil)
	if _, err := svc.Add(context.Background(), "anon-1-aa", validProduct, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckoutRejectsAnonymous(t *testing.T) {
	orders := &stubOrders{}
	svc := newService(&stubRepo{}, &stubProducts{}, orders, nil)

	_, err := svc.Checkout(context.Background(), "anon-1712345-ab12cd")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if orders.calls != 0 {
		t.Fatal("checkout must not touch the order repo for anonymous owners")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	repo := &stubRepo{}
	svc := newService(repo, &stubProducts{}, &stubOrders{err: domain.ErrEmptyCart}, nil)
	if _, err := svc.Checkout(context.Background(), accountKey); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if repo.clearCalls != 0 {
		t.Fatal("failed checkout must not clear the cart")
	}
}

func TestCheckoutClearsCartThroughRepository(t *testing.T) {
	emptied := domain.EmptyCart(accountKey)
	repo := &stubRepo{cart: &emptied}
	order := &domain.Order{ID: "o1", OwnerKey: accountKey, TotalCents: 2598}
	svc := newService(repo, &stubProducts{}, &stubOrders{order: order}, nil)

	if _, err := svc.Checkout(context.Background(), accountKey); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	// the order repo empties the rows, but Clear must still run through the
	// cart repository so a read cache replaces its stale copy
	if repo.clearCalls != 1 || repo.clearedOwner != accountKey {
		t.Fatalf("expected one Clear for %q, got %d for %q", accountKey, repo.clearCalls, repo.clearedOwner)
	}
}

func TestCheckoutSurvivesClearFailure(t *testing.T) {
	repo := &stubRepo{err: errors.New("redis down")}
	order := &domain.Order{ID: "o1", OwnerKey: accountKey}
	svc := newService(repo, &stubProducts{}, &stubOrders{order: order}, nil)

	got, err := svc.Checkout(context.Background(), accountKey)
	if err != nil || got.ID != "o1" {
		t.Fatalf("cache refresh failure must not fail checkout: order=%+v err=%v", got, err)
	}
}

func TestCheckoutPublishesOrderPlaced(t *testing.T) {
	order := &domain.Order{ID: "o1", OwnerKey: accountKey, TotalCents: 2598}
	pub := &stubPublisher{}
	svc := newService(&stubRepo{}, &stubProducts{}, &stubOrders{order: order}, pub)

	got, err := svc.Checkout(context.Background(), accountKey)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if got.ID != "o1" {
		t.Fatalf("unexpected order %+v", got)
	}
	if len(pub.published) != 1 || pub.published[0].ID != "o1" {
		t.Fatalf("order event not published: %+v", pub.published)
	}
}

func TestCheckoutSurvivesPublishFailure(t *testing.T) {
	order := &domain.Order{ID: "o1", OwnerKey: accountKey}
	pub := &stubPublisher{err: errors.New("nats down")}
	svc := newService(&stubRepo{}, &stubProducts{}, &stubOrders{order: order}, pub)

	if _, err := svc.Checkout(context.Background(), accountKey); err != nil {
		t.Fatalf("publish failure must not fail checkout: %v", err)
	}
}

func TestMergeAnonymousValidation(t *testing.T) {
	repo := &stubRepo{cart: &domain.Cart{OwnerKey: accountKey}}
	svc := newService(repo, &stubProducts{}, &stubOrders{}, nil)
	ctx := context.Background()

	if _, err := svc.MergeAnonymous(ctx, "anon-1-aa", "anon-2-bb"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("anonymous target: got %v", err)
	}
	if _, err := svc.MergeAnonymous(ctx, accountKey, accountKey); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("non-anonymous source: got %v", err)
	}

	if _, err := svc.MergeAnonymous(ctx, accountKey, "anon-2-bb"); err != nil {
		t.Fatalf("MergeAnonymous: %v", err)
	}
	if repo.lastMergeFrom != "anon-2-bb" || repo.lastMergeTo != accountKey {
		t.Fatalf("merge wired backwards: from=%q to=%q", repo.lastMergeFrom, repo.lastMergeTo)
	}
}
