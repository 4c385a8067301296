package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"mers/internal/domain"
)

const orderColumns = `id, store_id, order_number, email, financial_status, fulfillment_status,
	total_price, subtotal_price, total_tax, total_discounts, currency,
	created_at, updated_at, cancelled_at, line_items, shipping_address`

type OrderStore struct {
	db *sqlx.DB
}

func NewOrderStore(db *sqlx.DB) *OrderStore {
	return &OrderStore{db: db}
}

// Upsert inserts the order or refreshes its mutable fields in one statement.
// Creation-time fields (number, amounts, address) are written once.
func (s *OrderStore) Upsert(ctx context.Context, o *domain.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			financial_status = EXCLUDED.financial_status,
			fulfillment_status = EXCLUDED.fulfillment_status,
			updated_at = EXCLUDED.updated_at,
			cancelled_at = EXCLUDED.cancelled_at,
			line_items = EXCLUDED.line_items`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		o.ID,
		o.StoreID,
		o.OrderNumber,
		o.Email,
		o.FinancialStatus,
		o.FulfillmentStatus,
		o.TotalPrice,
		o.SubtotalPrice,
		o.TotalTax,
		o.TotalDiscounts,
		o.Currency,
		o.CreatedAt,
		o.UpdatedAt,
		o.CancelledAt,
		o.LineItems,
		o.ShippingAddress,
	)
	return err
}

func (s *OrderStore) Get(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &o, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListPaidSince returns paid orders of the store created at or after since, oldest first.
func (s *OrderStore) ListPaidSince(ctx context.Context, storeID string, since time.Time) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE store_id = $1 AND financial_status = $2 AND created_at >= $3
		ORDER BY created_at, id`

	var out []domain.Order
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &out, query, storeID, domain.FinancialStatusPaid, since); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSince returns orders of any status created at or after since, oldest first.
func (s *OrderStore) ListSince(ctx context.Context, storeID string, since time.Time) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE store_id = $1 AND created_at >= $2
		ORDER BY created_at, id`

	var out []domain.Order
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &out, query, storeID, since); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *OrderStore) Count(ctx context.Context, storeID string) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &n, `SELECT COUNT(*) FROM orders WHERE store_id = $1`, storeID)
	return n, err
}
