package domain

import "time"

type Provider string

const (
	ProviderShopify Provider = "shopify"
	ProviderMeta    Provider = "meta"
)

type IntegrationStatus string

const (
	IntegrationActive       IntegrationStatus = "active"
	IntegrationError        IntegrationStatus = "error"
	IntegrationDisconnected IntegrationStatus = "disconnected"
)

type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Store is a tenant. ShopifyToken is persisted so a store can be synced
// without consulting configuration, but it is never serialized.
type Store struct {
	ID            string        `db:"id" json:"id"`
	UserID        string        `db:"user_id" json:"userId"`
	Name          string        `db:"name" json:"name"`
	Slug          string        `db:"slug" json:"slug"`
	ShopifyDomain string        `db:"shopify_domain" json:"shopifyDomain"`
	ShopifyToken  string        `db:"shopify_token" json:"-"`
	Currency      string        `db:"currency" json:"currency"`
	Timezone      string        `db:"timezone" json:"timezone"`
	Active        bool          `db:"active" json:"active"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	Integrations  []Integration `db:"-" json:"integrations,omitempty"`
}

// Credentials returns the Shopify credentials persisted with the store.
func (s *Store) Credentials() ShopifyCredentials {
	return ShopifyCredentials{Domain: s.ShopifyDomain, AccessToken: s.ShopifyToken}
}

type Integration struct {
	ID          string            `db:"id" json:"id"`
	StoreID     string            `db:"store_id" json:"storeId"`
	Provider    Provider          `db:"provider" json:"provider"`
	Status      IntegrationStatus `db:"status" json:"status"`
	AccessToken string            `db:"access_token" json:"-"`
	Metadata    JSON              `db:"metadata" json:"metadata,omitempty"`
	LastSyncAt  *time.Time        `db:"last_sync_at" json:"lastSyncAt"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
}

type AdAccount struct {
	ID        string    `db:"id" json:"id"`
	StoreID   string    `db:"store_id" json:"storeId"`
	Provider  Provider  `db:"provider" json:"provider"`
	Name      string    `db:"name" json:"name"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ShopInfo is the subset of the commerce platform's shop resource used at initialization.
type ShopInfo struct {
	Name            string
	MyshopifyDomain string
	Currency        string
	Timezone        string
}

type ShopifyCredentials struct {
	Domain      string
	AccessToken string
}

type MetaCredentials struct {
	AdAccountID string
	AccessToken string
}

// StoreCredentials is the full per-tenant bundle produced by the store resolver.
type StoreCredentials struct {
	StoreID string
	Name    string
	Shopify ShopifyCredentials
	Meta    MetaCredentials
}
