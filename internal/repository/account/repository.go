package account

import (
	"context"

	"shopcart/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, a domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}
