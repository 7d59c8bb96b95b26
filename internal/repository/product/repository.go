package product

import (
	"context"

	"shopcart/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) error
}
