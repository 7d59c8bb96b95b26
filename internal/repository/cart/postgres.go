package cart

import (
	"context"
	"errors"

	"shopcart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByOwner(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	return fetchCart(ctx, r.pool, ownerKey)
}

func (r *postgresRepo) AddLine(ctx context.Context, ownerKey string, line domain.LineItem) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO carts (owner_key) VALUES ($1)
ON CONFLICT (owner_key) DO UPDATE SET updated_at = now()
`, ownerKey); err != nil {
		return nil, err
	}

	var existingQty int
	err = tx.QueryRow(ctx, `
SELECT quantity
FROM cart_lines
WHERE owner_key = $1 AND product_id = $2
`, ownerKey, line.ProductID).Scan(&existingQty)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if err == nil {
		if _, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE owner_key = $2 AND product_id = $3
`, existingQty+line.Quantity, ownerKey, line.ProductID); err != nil {
			return nil, err
		}
	} else {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (owner_key, product_id, name, price_cents, quantity, image)
VALUES ($1, $2, $3, $4, $5, $6)
`, ownerKey, line.ProductID, line.Name, line.PriceCents, line.Quantity, line.Image); err != nil {
			return nil, err
		}
	}

	if err := updateCartTotal(ctx, tx, ownerKey); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return fetchCart(ctx, r.pool, ownerKey)
}

func (r *postgresRepo) RemoveLine(ctx context.Context, ownerKey, productID string) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE owner_key = $1 AND product_id = $2
`, ownerKey, productID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := updateCartTotal(ctx, tx, ownerKey); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return fetchCart(ctx, r.pool, ownerKey)
}

func (r *postgresRepo) SetQuantity(ctx context.Context, ownerKey, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return r.RemoveLine(ctx, ownerKey, productID)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE owner_key = $2 AND product_id = $3
`, quantity, ownerKey, productID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := updateCartTotal(ctx, tx, ownerKey); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return fetchCart(ctx, r.pool, ownerKey)
}

func (r *postgresRepo) Clear(ctx context.Context, ownerKey string) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO carts (owner_key) VALUES ($1)
ON CONFLICT (owner_key) DO UPDATE SET updated_at = now()
`, ownerKey); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE owner_key = $1`, ownerKey); err != nil {
		return nil, err
	}
	if err := updateCartTotal(ctx, tx, ownerKey); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return fetchCart(ctx, r.pool, ownerKey)
}

// Merge folds the lines of fromKey into toKey additively and deletes the
// source cart, all in one transaction. A missing source cart folds nothing.
func (r *postgresRepo) Merge(ctx context.Context, fromKey, toKey string) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO carts (owner_key) VALUES ($1)
ON CONFLICT (owner_key) DO UPDATE SET updated_at = now()
`, toKey); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (owner_key, product_id, name, price_cents, quantity, image)
SELECT $2, product_id, name, price_cents, quantity, image
FROM cart_lines
WHERE owner_key = $1
ON CONFLICT (owner_key, product_id)
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
`, fromKey, toKey); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE owner_key = $1`, fromKey); err != nil {
		return nil, err
	}
	if err := updateCartTotal(ctx, tx, toKey); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return fetchCart(ctx, r.pool, toKey)
}

func (r *postgresRepo) Delete(ctx context.Context, ownerKey string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE owner_key = $1`, ownerKey)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchCart(ctx context.Context, q querier, ownerKey string) (*domain.Cart, error) {
	var cart domain.Cart
	err := q.QueryRow(ctx, `
SELECT owner_key, total_cents, created_at, updated_at
FROM carts
WHERE owner_key = $1
`, ownerKey).Scan(
		&cart.OwnerKey,
		&cart.TotalCents,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := q.Query(ctx, `
SELECT product_id, name, price_cents, quantity, image
FROM cart_lines
WHERE owner_key = $1
ORDER BY created_at ASC, id ASC
`, ownerKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Items = []domain.LineItem{}
	for rows.Next() {
		var line domain.LineItem
		if err := rows.Scan(
			&line.ProductID,
			&line.Name,
			&line.PriceCents,
			&line.Quantity,
			&line.Image,
		); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

func updateCartTotal(ctx context.Context, tx pgx.Tx, ownerKey string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET total_cents = COALESCE((
	SELECT SUM(price_cents * quantity)
	FROM cart_lines
	WHERE owner_key = $1
), 0),
    updated_at = now()
WHERE owner_key = $1
`, ownerKey)
	return err
}
