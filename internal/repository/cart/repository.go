package cart

import (
	"context"

	"shopcart/internal/domain"
)

// Repository persists owner-keyed carts. Write operations return the cart as
// stored after the mutation; the cart document is created implicitly on the
// first AddLine for an owner key.
type Repository interface {
	GetByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error)
	AddLine(ctx context.Context, ownerKey string, line domain.LineItem) (*domain.Cart, error)
	RemoveLine(ctx context.Context, ownerKey, productID string) (*domain.Cart, error)
	SetQuantity(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error)
	Clear(ctx context.Context, ownerKey string) (*domain.Cart, error)
	Merge(ctx context.Context, fromKey, toKey string) (*domain.Cart, error)
	Delete(ctx context.Context, ownerKey string) error
}
