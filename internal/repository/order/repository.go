package order

import (
	"context"

	"shopcart/internal/domain"
)

// Repository persists orders. CreateFromCart performs the checkout
// conversion: the owner's cart lines become order lines and the cart is
// emptied, atomically.
type Repository interface {
	CreateFromCart(ctx context.Context, ownerKey string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerKey string) ([]domain.Order, error)
}
