package token

import (
	"context"
	"time"
)

// Token is an opaque bearer credential. Authenticated tokens belong to an
// account owner key; anonymous tokens belong to a generated anonymous key.
type Token struct {
	Token         string
	OwnerKey      string
	Authenticated bool
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
