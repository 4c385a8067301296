package domain

import "time"

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductDraft    ProductStatus = "draft"
	ProductArchived ProductStatus = "archived"
)

// Product is keyed by the commerce platform's product id. A provider-side
// delete becomes ProductArchived; rows are never removed.
type Product struct {
	ID          string        `db:"id" json:"id"`
	StoreID     string        `db:"store_id" json:"storeId"`
	Title       string        `db:"title" json:"title"`
	Handle      string        `db:"handle" json:"handle"`
	Vendor      *string       `db:"vendor" json:"vendor"`
	ProductType *string       `db:"product_type" json:"productType"`
	Status      ProductStatus `db:"status" json:"status"`
	Variants    Variants      `db:"variants" json:"variants"`
	Images      JSON          `db:"images" json:"images"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
	PublishedAt *time.Time    `db:"published_at" json:"publishedAt"`
}

type Variant struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title,omitempty"`
	SKU               string  `json:"sku,omitempty"`
	Price             string  `json:"price"`
	CompareAtPrice    *string `json:"compare_at_price"`
	InventoryQuantity int     `json:"inventory_quantity"`
}

// Variants is stored as a JSONB array.
type Variants []Variant
