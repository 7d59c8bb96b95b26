package event

import (
	"context"
	"errors"

	"shopcart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, rec Record) error {
	const q = `
INSERT INTO events (id, subject, processed)
VALUES ($1, $2, $3)
`
	_, err := r.pool.Exec(ctx, q, rec.ID, rec.Subject, rec.Processed)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Record, error) {
	const q = `
SELECT id, subject, processed, created_at, updated_at
FROM events
WHERE id = $1
`
	var rec Record
	if err := r.pool.QueryRow(ctx, q, id).Scan(
		&rec.ID,
		&rec.Subject,
		&rec.Processed,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *postgresRepo) MarkProcessed(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE events SET processed = TRUE, updated_at = now() WHERE id = $1
`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
