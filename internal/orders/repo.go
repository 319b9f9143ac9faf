package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the Postgres order store. Orders are append-mostly: after the
// insert only status and updated_at are ever touched.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Insert(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, number, user_id, customer_name, email, phone,
		                   address, city, postal_code, lat, lng,
		                   total_cents, status, payment_method, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`, o.ID, o.Number, o.UserID, o.CustomerName, o.Email, o.Phone,
		o.Address, o.City, o.PostalCode, o.Lat, o.Lng,
		o.TotalCents, o.Status, o.PaymentMethod, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, l := range o.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines(id, order_id, product_id, name, unit_price_cents, qty, image_url)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			l.ID, o.ID, l.ProductID, l.Name, l.UnitPriceCents, l.Qty, l.ImageURL)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

const orderCols = `id, number, user_id, customer_name, email, phone,
	address, city, postal_code, lat, lng,
	total_cents, status, payment_method, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Number, &o.UserID, &o.CustomerName, &o.Email, &o.Phone,
		&o.Address, &o.City, &o.PostalCode, &o.Lat, &o.Lng,
		&o.TotalCents, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) loadLines(ctx context.Context, o *Order) error {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_id, name, unit_price_cents, qty, image_url
		FROM order_lines WHERE order_id=$1`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.UnitPriceCents, &l.Qty, &l.ImageURL); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) GetByNumber(ctx context.Context, number string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE number=$1`, number))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus is a compare-and-set on the current status, so concurrent
// staff updates from the same prior state cannot both succeed.
func (r *Repo) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$3, updated_at=$4
		WHERE id=$1 AND status=$2`, id, from, to, at)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		// Either the row is gone or someone moved the status first.
		var cur string
		if err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&cur); errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	where := ` WHERE ($1='' OR status=$1)
		AND ($2='' OR number ILIKE '%'||$2||'%' OR email ILIKE '%'||$2||'%')`
	args := []any{string(f.Status), f.Search}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders`+where+`
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		append(args, f.PageSize, (f.Page-1)*f.PageSize)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.loadLines(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders
		WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadLines(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

var _ OrderStore = (*Repo)(nil)
