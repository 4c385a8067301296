package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is keyed by the commerce platform's order id. Status fields are
// opaque provider strings; nothing here validates them.
type Order struct {
	ID                string              `db:"id" json:"id"`
	StoreID           string              `db:"store_id" json:"storeId"`
	OrderNumber       string              `db:"order_number" json:"orderNumber"`
	Email             *string             `db:"email" json:"email"`
	FinancialStatus   string              `db:"financial_status" json:"financialStatus"`
	FulfillmentStatus *string             `db:"fulfillment_status" json:"fulfillmentStatus"`
	TotalPrice        decimal.Decimal     `db:"total_price" json:"totalPrice"`
	SubtotalPrice     decimal.NullDecimal `db:"subtotal_price" json:"subtotalPrice"`
	TotalTax          decimal.Decimal     `db:"total_tax" json:"totalTax"`
	TotalDiscounts    decimal.Decimal     `db:"total_discounts" json:"totalDiscounts"`
	Currency          string              `db:"currency" json:"currency"`
	CreatedAt         time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time           `db:"updated_at" json:"updatedAt"`
	CancelledAt       *time.Time          `db:"cancelled_at" json:"cancelledAt"`
	LineItems         LineItems           `db:"line_items" json:"lineItems"`
	ShippingAddress   JSON                `db:"shipping_address" json:"shippingAddress"`
}

// IsPaid is the string comparison the revenue rollups filter on.
func (o *Order) IsPaid() bool {
	return o.FinancialStatus == FinancialStatusPaid
}

const FinancialStatusPaid = "paid"

type LineItem struct {
	Title     string          `json:"title"`
	Name      string          `json:"name,omitempty"`
	SKU       string          `json:"sku,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ProductID *int64          `json:"product_id"`
	VariantID *int64          `json:"variant_id"`
}

// LineItems is stored as a JSONB array.
type LineItems []LineItem
