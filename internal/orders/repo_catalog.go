package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepo reads the catalog tables owned by the storefront CRUD. This
// core only ever reads them; price and availability are consumed at
// checkout-snapshot time.
type CatalogRepo struct{ DB *pgxpool.Pool }

func (r *CatalogRepo) Product(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, category_id, name, image_url, price_cents, available, created_at, updated_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.CategoryID, &p.Name, &p.ImageURL, &p.PriceCents, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, category_id, name, image_url, price_cents, available, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.ImageURL, &p.PriceCents, &p.Available, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Seed installs the demo menu once. The guard is the persisted row count,
// not an in-memory flag, so it holds across restarts and replicas.
func (r *CatalogRepo) Seed(ctx context.Context) error {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	type seedProduct struct {
		name  string
		price int
		image string
	}
	menu := map[string][]seedProduct{
		"Burgers": {
			{"Classic Beef Burger", 1450, "/img/classic-beef.jpg"},
			{"Cheese Burger", 1650, "/img/cheese.jpg"},
			{"Crispy Chicken Burger", 1350, "/img/crispy-chicken.jpg"},
		},
		"Sides": {
			{"French Fries", 600, "/img/fries.jpg"},
			{"Onion Rings", 700, "/img/onion-rings.jpg"},
		},
		"Drinks": {
			{"Iced Milo", 450, "/img/milo.jpg"},
			{"Lime Soda", 400, "/img/lime-soda.jpg"},
		},
	}
	for cat, items := range menu {
		catID := uuid.NewString()
		if _, err := tx.Exec(ctx, `INSERT INTO categories(id, name, created_at) VALUES ($1,$2,$3)`,
			catID, cat, now); err != nil {
			return err
		}
		for _, it := range items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO products(id, category_id, name, image_url, price_cents, available, created_at, updated_at)
				VALUES ($1,$2,$3,$4,$5,true,$6,$6)`,
				uuid.NewString(), catID, it.name, it.image, it.price, now); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

var _ Catalog = (*CatalogRepo)(nil)
