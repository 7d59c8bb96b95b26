package httpserver

import (
	"context"
	"errors"
	"time"

	"shopcart/internal/domain"
	tokenrepo "shopcart/internal/repository/token"
	accountsvc "shopcart/internal/service/account"
	"go.uber.org/zap"
)

type stubCartService struct {
	cart     *domain.Cart
	order    *domain.Order
	err      error
	lastCall string
	lastArgs []string
}

func (s *stubCartService) Get(_ context.Context, ownerKey string) (*domain.Cart, error) {
	s.record("get", ownerKey)
	return s.cart, s.err
}

func (s *stubCartService) Add(_ context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error) {
	s.record("add", ownerKey, productID)
	return s.cart, s.err
}

func (s *stubCartService) Remove(_ context.Context, ownerKey, productID string) (*domain.Cart, error) {
	s.record("remove", ownerKey, productID)
	return s.cart, s.err
}

func (s *stubCartService) SetQuantity(_ context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error) {
	s.record("setQuantity", ownerKey, productID)
	return s.cart, s.err
}

func (s *stubCartService) Clear(_ context.Context, ownerKey string) (*domain.Cart, error) {
	s.record("clear", ownerKey)
	return s.cart, s.err
}

func (s *stubCartService) Delete(_ context.Context, ownerKey string) error {
	s.record("delete", ownerKey)
	return s.err
}

func (s *stubCartService) Checkout(_ context.Context, ownerKey string) (*domain.Order, error) {
	s.record("checkout", ownerKey)
	return s.order, s.err
}

func (s *stubCartService) MergeAnonymous(_ context.Context, accountKey, anonymousKey string) (*domain.Cart, error) {
	s.record("merge", accountKey, anonymousKey)
	return s.cart, s.err
}

func (s *stubCartService) record(call string, args ...string) {
	s.lastCall = call
	s.lastArgs = args
}

type stubAccountService struct {
	account *domain.Account
	token   string
	err     error
}

func (s *stubAccountService) Signup(_ context.Context, _ accountsvc.SignupInput) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubAccountService) Login(_ context.Context, _, _ string) (*domain.Account, string, error) {
	return s.account, s.token, s.err
}

func (s *stubAccountService) AccessTTLSeconds() int { return 3600 }

type stubAnonymousService struct {
	anonymousID string
	token       string
	err         error
}

func (s *stubAnonymousService) Issue(_ context.Context) (string, string, error) {
	return s.anonymousID, s.token, s.err
}

func (s *stubAnonymousService) TTLSeconds() int { return 86400 }

type stubCatalog struct {
	product  *domain.Product
	products []domain.Product
	err      error
}

func (s *stubCatalog) GetByID(_ context.Context, _ string) (*domain.Product, error) {
	return s.product, s.err
}

func (s *stubCatalog) List(_ context.Context, _, _ int) ([]domain.Product, error) {
	return s.products, s.err
}

type stubTokenStore struct {
	tokens  map[string]tokenrepo.Token
	deleted []string
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: make(map[string]tokenrepo.Token)}
}

func (s *stubTokenStore) add(raw, ownerKey string, authenticated bool, ttl time.Duration) {
	s.tokens[raw] = tokenrepo.Token{
		Token:         raw,
		OwnerKey:      ownerKey,
		Authenticated: authenticated,
		ExpiresAt:     time.Now().Add(ttl),
	}
}

func (s *stubTokenStore) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	if t, ok := s.tokens[token]; ok {
		return &t, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubTokenStore) Delete(_ context.Context, token string) error {
	delete(s.tokens, token)
	s.deleted = append(s.deleted, token)
	return nil
}

var errBoom = errors.New("boom")

func testDeps() (Deps, *stubCartService, *stubTokenStore) {
	cartSvc := &stubCartService{cart: &domain.Cart{OwnerKey: "acct1", Items: []domain.LineItem{}}}
	tokens := newStubTokenStore()
	deps := Deps{
		CartSvc:      cartSvc,
		AccountSvc:   &stubAccountService{},
		AnonymousSvc: &stubAnonymousService{anonymousID: "anon-1-ab", token: "tok"},
		Products:     &stubCatalog{},
		Tokens:       tokens,
	}
	return deps, cartSvc, tokens
}

func testLogger() *zap.Logger { return zap.NewNop() }
