package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"mers/internal/domain"
)

type AdAccountStore struct {
	db *sqlx.DB
}

func NewAdAccountStore(db *sqlx.DB) *AdAccountStore {
	return &AdAccountStore{db: db}
}

// Create inserts the account; re-linking an existing account refreshes name and currency.
func (s *AdAccountStore) Create(ctx context.Context, acc *domain.AdAccount) error {
	query := `
		INSERT INTO ad_accounts (id, store_id, provider, name, currency)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			currency = EXCLUDED.currency
		RETURNING created_at`

	return sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &acc.CreatedAt, query,
		acc.ID, acc.StoreID, acc.Provider, acc.Name, acc.Currency,
	)
}

func (s *AdAccountStore) ListByStore(ctx context.Context, storeID string) ([]domain.AdAccount, error) {
	var out []domain.AdAccount
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &out, `
		SELECT id, store_id, provider, name, currency, created_at
		FROM ad_accounts
		WHERE store_id = $1
		ORDER BY created_at`, storeID)
	if err != nil {
		return nil, err
	}
	return out, nil
}
