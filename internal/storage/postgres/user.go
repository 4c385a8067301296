package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mers/internal/domain"
)

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// GetOrCreate returns the user with email, creating it on first use.
func (s *UserStore) GetOrCreate(ctx context.Context, email, name string) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, name, created_at`

	var u domain.User
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &u, query, uuid.NewString(), email, name)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
