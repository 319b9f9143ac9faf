package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartRepo is the Postgres cart store. One carts row per customer, created
// lazily; Clear deletes the lines, never the row.
type CartRepo struct{ DB *pgxpool.Pool }

func (r *CartRepo) Get(ctx context.Context, userID string) (*Cart, error) {
	c := &Cart{UserID: userID}
	err := r.DB.QueryRow(ctx, `SELECT created_at, updated_at FROM carts WHERE user_id=$1`, userID).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `SELECT product_id, qty FROM cart_lines WHERE user_id=$1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ProductID, &l.Qty); err != nil {
			return nil, err
		}
		c.Lines = append(c.Lines, l)
	}
	return c, rows.Err()
}

// SetLine upserts one (product, qty) pair. The PK on (user_id, product_id)
// keeps duplicate product lines impossible.
func (r *CartRepo) SetLine(ctx context.Context, userID, productID string, qty int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		INSERT INTO carts(user_id, created_at, updated_at) VALUES ($1,$2,$2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at=$2`, userID, now); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO cart_lines(user_id, product_id, qty) VALUES ($1,$2,$3)
		ON CONFLICT (user_id, product_id) DO UPDATE SET qty=$3`, userID, productID, qty); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *CartRepo) RemoveLine(ctx context.Context, userID, productID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1 AND product_id=$2`, userID, productID)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx, `UPDATE carts SET updated_at=$2 WHERE user_id=$1`, userID, time.Now().UTC())
	return err
}

func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at=$2 WHERE user_id=$1`, userID, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var _ CartStore = (*CartRepo)(nil)
