package event

import (
	"context"
	"time"
)

// Record marks a consumed event so redelivery is a no-op.
type Record struct {
	ID        string
	Subject   string
	Processed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	Create(ctx context.Context, rec Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	MarkProcessed(ctx context.Context, id string) error
}
