package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"mers/internal/config"
	"mers/internal/domain"
)

type SetupDeps struct {
	Users        UserStore
	Stores       StoreStore
	Integrations IntegrationStore
	AdAccounts   AdAccountStore
	Orders       OrderStore
	Products     ProductStore
	Runs         SyncRunStore
	TxManager    TransactionManager
	Shopify      ShopifyClient
	Meta         MetaClient
}

// SetupService owns the development user, its stores and their integrations.
type SetupService struct {
	SetupDeps
	devUser      config.DevUserConfig
	shopifyCreds domain.ShopifyCredentials
	metaCreds    domain.MetaCredentials
	logger       *slog.Logger
}

func NewSetupService(
	deps SetupDeps,
	devUser config.DevUserConfig,
	shopifyCreds domain.ShopifyCredentials,
	metaCreds domain.MetaCredentials,
	logger *slog.Logger,
) *SetupService {
	return &SetupService{
		SetupDeps:    deps,
		devUser:      devUser,
		shopifyCreds: shopifyCreds,
		metaCreds:    metaCreds,
		logger:       logger.With("component", "setup"),
	}
}

type InitResult struct {
	Store   *domain.Store
	Created bool
}

func (s *SetupService) CurrentUser(ctx context.Context) (*domain.User, error) {
	u, err := s.Users.GetOrCreate(ctx, s.devUser.Email, s.devUser.Name)
	if err != nil {
		return nil, fmt.Errorf("get dev user: %w", err)
	}
	return u, nil
}

// CallerStore returns the first active store of the development user.
func (s *SetupService) CallerStore(ctx context.Context) (*domain.Store, error) {
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.Stores.FirstActiveByUser(ctx, u.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoStore
	}
	if err != nil {
		return nil, fmt.Errorf("find store: %w", err)
	}
	return st, nil
}

// Initialize creates the caller's store from the single-tenant credentials.
// It is a no-op when the caller already has a store.
func (s *SetupService) Initialize(ctx context.Context) (*InitResult, error) {
	existing, err := s.CallerStore(ctx)
	if err == nil {
		existing.Integrations, err = s.Integrations.ListByStore(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("list integrations: %w", err)
		}
		return &InitResult{Store: existing}, nil
	}
	if !errors.Is(err, domain.ErrNoStore) {
		return nil, err
	}

	if s.shopifyCreds.Domain == "" {
		return nil, &domain.ConfigError{Field: "shopify.domain"}
	}
	if s.shopifyCreds.AccessToken == "" {
		return nil, &domain.ConfigError{Field: "shopify.access_token"}
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	shop, err := s.Shopify.FetchShop(ctx, &s.shopifyCreds)
	if err != nil {
		return nil, fmt.Errorf("fetch shop: %w", err)
	}

	store := &domain.Store{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		Name:          shop.Name,
		Slug:          slugFromDomain(shop.MyshopifyDomain),
		ShopifyDomain: shop.MyshopifyDomain,
		ShopifyToken:  s.shopifyCreds.AccessToken,
		Currency:      shop.Currency,
		Timezone:      shop.Timezone,
		Active:        true,
	}
	shopifyIntegration := domain.Integration{
		ID:          uuid.NewString(),
		StoreID:     store.ID,
		Provider:    domain.ProviderShopify,
		Status:      domain.IntegrationActive,
		AccessToken: s.shopifyCreds.AccessToken,
	}

	err = s.TxManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Stores.Create(txCtx, store); err != nil {
			return fmt.Errorf("create store: %w", err)
		}
		if err := s.Integrations.Upsert(txCtx, &shopifyIntegration); err != nil {
			return fmt.Errorf("create shopify integration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	store.Integrations = []domain.Integration{shopifyIntegration}

	logger := s.logger.With("store_id", store.ID, "shop", store.ShopifyDomain)
	logger.Info("store initialized")

	if s.metaCreds.AccessToken != "" && s.metaCreds.AdAccountID != "" {
		metaIntegration, err := s.linkMeta(ctx, store.ID)
		if err != nil {
			logger.Warn("meta integration skipped", "error", err)
		} else {
			store.Integrations = append(store.Integrations, *metaIntegration)
		}
	}

	return &InitResult{Store: store, Created: true}, nil
}

func (s *SetupService) linkMeta(ctx context.Context, storeID string) (*domain.Integration, error) {
	acc, err := s.Meta.FetchAccount(ctx, &s.metaCreds)
	if err != nil {
		return nil, fmt.Errorf("fetch ad account: %w", err)
	}

	metadata, err := json.Marshal(map[string]string{
		"accountId":   acc.ID,
		"accountName": acc.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	currency := acc.Currency
	if currency == "" {
		currency = "USD"
	}

	in := &domain.Integration{
		ID:          uuid.NewString(),
		StoreID:     storeID,
		Provider:    domain.ProviderMeta,
		Status:      domain.IntegrationActive,
		AccessToken: s.metaCreds.AccessToken,
		Metadata:    domain.JSON(metadata),
	}
	err = s.TxManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.Integrations.Upsert(txCtx, in); err != nil {
			return fmt.Errorf("create meta integration: %w", err)
		}
		return s.AdAccounts.Create(txCtx, &domain.AdAccount{
			ID:       acc.ID,
			StoreID:  storeID,
			Provider: domain.ProviderMeta,
			Name:     acc.Name,
			Currency: currency,
		})
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func slugFromDomain(shopDomain string) string {
	slug, _, _ := strings.Cut(shopDomain, ".")
	return slug
}

// Status is the caller's store health snapshot. A nil Store means not initialized.
func (s *SetupService) Status(ctx context.Context) (*domain.StoreStatus, error) {
	store, err := s.CallerStore(ctx)
	if errors.Is(err, domain.ErrNoStore) {
		return &domain.StoreStatus{}, nil
	}
	if err != nil {
		return nil, err
	}

	st := &domain.StoreStatus{Store: store}

	if st.Orders, err = s.Orders.Count(ctx, store.ID); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	if st.Products, err = s.Products.Count(ctx, store.ID); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	if st.LastOrders, err = s.Runs.LastCompletedAt(ctx, store.ID, domain.SyncOrders); err != nil {
		return nil, fmt.Errorf("last orders sync: %w", err)
	}
	if st.LastProducts, err = s.Runs.LastCompletedAt(ctx, store.ID, domain.SyncProducts); err != nil {
		return nil, fmt.Errorf("last products sync: %w", err)
	}
	if st.Integrations, err = s.Integrations.ListByStore(ctx, store.ID); err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	return st, nil
}

// ListStores returns the caller's stores with their integrations.
func (s *SetupService) ListStores(ctx context.Context) ([]domain.Store, error) {
	u, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	stores, err := s.Stores.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	for i := range stores {
		stores[i].Integrations, err = s.Integrations.ListByStore(ctx, stores[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list integrations: %w", err)
		}
	}
	return stores, nil
}

// StoreWithIntegrations returns storeID (or the caller's first active store when
// empty) with its integrations. A store not owned by the caller is ErrNoStore.
func (s *SetupService) StoreWithIntegrations(ctx context.Context, storeID string) (*domain.Store, error) {
	var (
		store *domain.Store
		err   error
	)
	if storeID == "" {
		store, err = s.CallerStore(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		u, err := s.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		store, err = s.Stores.GetByID(ctx, storeID)
		if errors.Is(err, domain.ErrNotFound) || (err == nil && store.UserID != u.ID) {
			return nil, domain.ErrNoStore
		}
		if err != nil {
			return nil, fmt.Errorf("find store: %w", err)
		}
	}

	store.Integrations, err = s.Integrations.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, fmt.Errorf("list integrations: %w", err)
	}
	return store, nil
}
