package order

import (
	"context"
	"errors"

	"shopcart/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) CreateFromCart(ctx context.Context, ownerKey string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the cart row for the duration of the conversion.
	var totalCents int64
	err = tx.QueryRow(ctx, `
SELECT total_cents
FROM carts
WHERE owner_key = $1
FOR UPDATE
`, ownerKey).Scan(&totalCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := tx.Query(ctx, `
SELECT product_id, name, price_cents, quantity, image
FROM cart_lines
WHERE owner_key = $1
ORDER BY created_at ASC, id ASC
`, ownerKey)
	if err != nil {
		return nil, err
	}
	items := []domain.LineItem{}
	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(&line.ProductID, &line.Name, &line.PriceCents, &line.Quantity, &line.Image); err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	out := domain.Order{
		ID:         uuid.NewString(),
		OwnerKey:   ownerKey,
		Items:      items,
		TotalCents: totalCents,
	}
	if err := tx.QueryRow(ctx, `
INSERT INTO orders (id, owner_key, total_cents)
VALUES ($1, $2, $3)
RETURNING created_at
`, out.ID, out.OwnerKey, out.TotalCents).Scan(&out.CreatedAt); err != nil {
		return nil, err
	}
	for _, line := range items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_lines (order_id, product_id, name, price_cents, quantity, image)
VALUES ($1, $2, $3, $4, $5, $6)
`, out.ID, line.ProductID, line.Name, line.PriceCents, line.Quantity, line.Image); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE owner_key = $1`, ownerKey); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
UPDATE carts SET total_cents = 0, updated_at = now() WHERE owner_key = $1
`, ownerKey); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	err := r.pool.QueryRow(ctx, `
SELECT id, owner_key, total_cents, created_at
FROM orders
WHERE id = $1
`, id).Scan(&out.ID, &out.OwnerKey, &out.TotalCents, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT product_id, name, price_cents, quantity, image
FROM order_lines
WHERE order_id = $1
ORDER BY id ASC
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out.Items = []domain.LineItem{}
	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(&line.ProductID, &line.Name, &line.PriceCents, &line.Quantity, &line.Image); err != nil {
			return nil, err
		}
		out.Items = append(out.Items, line)
	}
	return &out, rows.Err()
}

func (r *postgresRepo) ListByOwner(ctx context.Context, ownerKey string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, owner_key, total_cents, created_at
FROM orders
WHERE owner_key = $1
ORDER BY created_at DESC
`, ownerKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.OwnerKey, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
