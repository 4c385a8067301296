package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"mers/internal/domain"
)

type IntegrationStore struct {
	db *sqlx.DB
}

func NewIntegrationStore(db *sqlx.DB) *IntegrationStore {
	return &IntegrationStore{db: db}
}

// Upsert keeps one integration per (store, provider).
func (s *IntegrationStore) Upsert(ctx context.Context, in *domain.Integration) error {
	query := `
		INSERT INTO integrations (id, store_id, provider, status, access_token, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (store_id, provider) DO UPDATE SET
			status = EXCLUDED.status,
			access_token = EXCLUDED.access_token,
			metadata = EXCLUDED.metadata
		RETURNING id, created_at`

	return GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		in.ID,
		in.StoreID,
		in.Provider,
		in.Status,
		in.AccessToken,
		in.Metadata,
	).Scan(&in.ID, &in.CreatedAt)
}

func (s *IntegrationStore) ListByStore(ctx context.Context, storeID string) ([]domain.Integration, error) {
	query := `
		SELECT id, store_id, provider, status, access_token, metadata, last_sync_at, created_at
		FROM integrations
		WHERE store_id = $1
		ORDER BY created_at, provider`

	var out []domain.Integration
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &out, query, storeID); err != nil {
		return nil, err
	}
	return out, nil
}

// TouchLastSync stamps last_sync_at; a missing integration is not an error.
func (s *IntegrationStore) TouchLastSync(ctx context.Context, storeID string, provider domain.Provider, at time.Time) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE integrations SET last_sync_at = $3 WHERE store_id = $1 AND provider = $2`,
		storeID, provider, at,
	)
	return err
}
