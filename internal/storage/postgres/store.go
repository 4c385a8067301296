package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"mers/internal/domain"
)

const storeColumns = `id, user_id, name, slug, shopify_domain, shopify_token, currency, timezone, active, created_at`

// StoreStore persists tenants (the stores table).
type StoreStore struct {
	db *sqlx.DB
}

func NewStoreStore(db *sqlx.DB) *StoreStore {
	return &StoreStore{db: db}
}

func (s *StoreStore) Create(ctx context.Context, store *domain.Store) error {
	query := `
		INSERT INTO stores (id, user_id, name, slug, shopify_domain, shopify_token, currency, timezone, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &store.CreatedAt, query,
		store.ID,
		store.UserID,
		store.Name,
		store.Slug,
		store.ShopifyDomain,
		store.ShopifyToken,
		store.Currency,
		store.Timezone,
		store.Active,
	)
}

func (s *StoreStore) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	return s.getOne(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
}

// FirstActiveByUser returns the oldest active store of the user.
func (s *StoreStore) FirstActiveByUser(ctx context.Context, userID string) (*domain.Store, error) {
	return s.getOne(ctx, `
		SELECT `+storeColumns+`
		FROM stores
		WHERE user_id = $1 AND active
		ORDER BY created_at, id
		LIMIT 1`, userID)
}

func (s *StoreStore) GetByShopifyDomain(ctx context.Context, shopDomain string) (*domain.Store, error) {
	return s.getOne(ctx, `SELECT `+storeColumns+` FROM stores WHERE shopify_domain = $1`, shopDomain)
}

func (s *StoreStore) ListByUser(ctx context.Context, userID string) ([]domain.Store, error) {
	var out []domain.Store
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &out,
		`SELECT `+storeColumns+` FROM stores WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *StoreStore) getOne(ctx context.Context, query string, args ...any) (*domain.Store, error) {
	var st domain.Store
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &st, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}
