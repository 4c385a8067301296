package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"mers/internal/domain"
	"mers/internal/provider/meta"
)

type ShopifyClient interface {
	FetchShop(ctx context.Context, creds *domain.ShopifyCredentials) (*domain.ShopInfo, error)
	FetchOrdersPage(ctx context.Context, creds *domain.ShopifyCredentials, page, limit int) ([]domain.Order, error)
	FetchProductsPage(ctx context.Context, creds *domain.ShopifyCredentials, page, limit int) ([]domain.Product, error)
}

type MetaClient interface {
	FetchAccount(ctx context.Context, creds *domain.MetaCredentials) (*meta.Account, error)
}

type UserStore interface {
	GetOrCreate(ctx context.Context, email, name string) (*domain.User, error)
}

type StoreStore interface {
	Create(ctx context.Context, store *domain.Store) error
	GetByID(ctx context.Context, id string) (*domain.Store, error)
	FirstActiveByUser(ctx context.Context, userID string) (*domain.Store, error)
	GetByShopifyDomain(ctx context.Context, shopDomain string) (*domain.Store, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Store, error)
}

type IntegrationStore interface {
	Upsert(ctx context.Context, in *domain.Integration) error
	ListByStore(ctx context.Context, storeID string) ([]domain.Integration, error)
	TouchLastSync(ctx context.Context, storeID string, provider domain.Provider, at time.Time) error
}

type AdAccountStore interface {
	Create(ctx context.Context, acc *domain.AdAccount) error
}

type OrderStore interface {
	Upsert(ctx context.Context, o *domain.Order) error
	ListPaidSince(ctx context.Context, storeID string, since time.Time) ([]domain.Order, error)
	ListSince(ctx context.Context, storeID string, since time.Time) ([]domain.Order, error)
	Count(ctx context.Context, storeID string) (int, error)
}

type ProductStore interface {
	Upsert(ctx context.Context, p *domain.Product) error
	Archive(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, storeID string) (int, error)
}

type SyncRunStore interface {
	Create(ctx context.Context, run *domain.SyncRun) error
	Finish(ctx context.Context, run *domain.SyncRun) error
	LastCompletedAt(ctx context.Context, storeID string, syncType domain.SyncType) (*time.Time, error)
}

type TaskStore interface {
	List(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event *domain.ChangeEvent) error
	Close() error
}

type Metrics interface {
	ObserveSync(syncType domain.SyncType, status domain.SyncStatus, records int, took time.Duration)
	ObserveWebhook(topic, outcome string)
}
