package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"mers/internal/domain"
)

const productColumns = `id, store_id, title, handle, vendor, product_type, status,
	variants, images, created_at, updated_at, published_at`

type ProductStore struct {
	db *sqlx.DB
}

func NewProductStore(db *sqlx.DB) *ProductStore {
	return &ProductStore{db: db}
}

func (s *ProductStore) Upsert(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at,
			published_at = EXCLUDED.published_at,
			variants = EXCLUDED.variants,
			images = EXCLUDED.images`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		p.ID,
		p.StoreID,
		p.Title,
		p.Handle,
		p.Vendor,
		p.ProductType,
		p.Status,
		p.Variants,
		p.Images,
		p.CreatedAt,
		p.UpdatedAt,
		p.PublishedAt,
	)
	return err
}

// Archive marks the product archived and reports whether a row matched.
// Nothing else on the row changes.
func (s *ProductStore) Archive(ctx context.Context, id string) (bool, error) {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE products SET status = $2 WHERE id = $1`,
		id, domain.ProductArchived,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *ProductStore) Get(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &p, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProductStore) Count(ctx context.Context, storeID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n, `SELECT COUNT(*) FROM products WHERE store_id = $1`, storeID)
	return n, err
}
