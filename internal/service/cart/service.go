package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopcart/internal/domain"
	"go.uber.org/zap"
)

// ErrInvalidArgument marks malformed input (owner keys, product ids,
// quantities). Handlers map it to a 400.
var ErrInvalidArgument = errors.New("invalid argument")

type Service struct {
	repo      cartRepo
	products  productRepo
	orders    orderRepo
	publisher Publisher
	logger    *zap.Logger
}

type cartRepo interface {
	GetByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error)
	AddLine(ctx context.Context, ownerKey string, line domain.LineItem) (*domain.Cart, error)
	RemoveLine(ctx context.Context, ownerKey, productID string) (*domain.Cart, error)
	SetQuantity(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context, ownerKey string) (*domain.Cart, error)
	Merge(ctx context.Context, fromKey, toKey string) (*domain.Cart, error)
	Delete(ctx context.Context, ownerKey string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderRepo interface {
	CreateFromCart(ctx context.Context, ownerKey string) (*domain.Order, error)
}

// Publisher emits order lifecycle events. Publishing is best-effort; checkout
// never fails because of it.
type Publisher interface {
	OrderPlaced(ctx context.Context, order domain.Order) error
}

func New(repo cartRepo, products productRepo, orders orderRepo, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Get(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	if err := checkOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	return s.repo.GetByOwner(ctx, ownerKey)
}

// Add upserts a line item: the cart is created on first add, and adding a
// product already in the cart accumulates quantity. Name, price and image are
// snapshotted from the catalog at this moment.
func (s *Service) Add(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error) {
	if err := checkOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	if err := checkProductID(productID); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidArgument)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return nil, err
	}
	return s.repo.AddLine(ctx, ownerKey, product.Snapshot(quantity))
}

func (s *Service) Remove(ctx context.Context, ownerKey, productID string) (*domain.Cart, error) {
	if err := checkOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	if err := checkProductID(productID); err != nil {
		return nil, err
	}
	return s.repo.RemoveLine(ctx, ownerKey, productID)
}

// SetQuantity sets a line's quantity; zero or negative removes the line. The
// cart total is recomputed from scratch by the repository.
func (s *Service) SetQuantity(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error) {
	if err := checkOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	if err := checkProductID(productID); err != nil {
		return nil, err
	}
	return s.repo.SetQuantity(ctx, ownerKey, productID, quantity)
}

func (s *Service) Clear(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	if err := checkOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	return s.repo.Clear(ctx, ownerKey)
}

func (s *Service) Delete(ctx context.Context, ownerKey string) error {
	if err := checkOwnerKey(ownerKey); err != nil {
		return err
	}
	return s.repo.Delete(ctx, ownerKey)
}

// Checkout converts the cart into an order and empties it atomically.
// Anonymous owner keys cannot check out.
func (s *Service) Checkout(ctx context.Context, ownerKey string) (*domain.Order, error) {
	if err := checkOwnerKey(ownerKey); err != nil {
		return nil, err
	}
	if domain.IsAnonymousKey(ownerKey) {
		return nil, domain.ErrUnauthenticated
	}

	order, err := s.orders.CreateFromCart(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	// The order tx empties the cart rows directly; run Clear through the
	// repository as well so a caching layer replaces its copy of the cart.
	if _, err := s.repo.Clear(ctx, ownerKey); err != nil {
		s.logger.Warn("cart refresh after checkout failed",
			zap.String("owner_key", ownerKey),
			zap.Error(err))
	}

	if s.publisher != nil {
		if err := s.publisher.OrderPlaced(ctx, *order); err != nil {
			s.logger.Warn("order event publish failed",
				zap.String("order_id", order.ID),
				zap.Error(err))
		}
	}
	return order, nil
}

// MergeAnonymous folds an anonymous cart into the account's cart additively
// and deletes the anonymous cart, in one transaction.
func (s *Service) MergeAnonymous(ctx context.Context, accountKey, anonymousKey string) (*domain.Cart, error) {
	if err := checkOwnerKey(accountKey); err != nil {
		return nil, err
	}
	if err := checkOwnerKey(anonymousKey); err != nil {
		return nil, err
	}
	if domain.IsAnonymousKey(accountKey) {
		return nil, domain.ErrUnauthenticated
	}
	if !domain.IsAnonymousKey(anonymousKey) {
		return nil, fmt.Errorf("%w: source is not an anonymous key", ErrInvalidArgument)
	}
	return s.repo.Merge(ctx, anonymousKey, accountKey)
}

func checkOwnerKey(key string) error {
	if !domain.ValidOwnerKey(strings.TrimSpace(key)) {
		return fmt.Errorf("%w: owner key", ErrInvalidArgument)
	}
	return nil
}

func checkProductID(id string) error {
	if !domain.ValidProductID(strings.TrimSpace(id)) {
		return fmt.Errorf("%w: product id", ErrInvalidArgument)
	}
	return nil
}
