package account

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

func (r *postgresRepo) Create(ctx context.Context, a domain.Account) error {
	const q = `
INSERT INTO accounts (id, email, password_hash, name)
VALUES ($1, $2, $3, $4)
`
	_, err := r.pool.Exec(ctx, q, a.ID, a.Email, a.PasswordHash, a.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.get(ctx, `
SELECT id, email, password_hash, name, created_at
FROM accounts
WHERE email = $1
`, email)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.get(ctx, `
SELECT id, email, password_hash, name, created_at
FROM accounts
WHERE id = $1
`, id)
}

func (r *postgresRepo) get(ctx context.Context, q, arg string) (*domain.Account, error) {
	var a domain.Account
	if err := r.pool.QueryRow(ctx, q, arg).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.Name,
		&a.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
