package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mers/internal/config"
	"mers/internal/domain"
)

// SyncService pulls orders and products from the commerce platform into the
// local store. Each invocation is recorded as one SyncRun.
//
// Concurrent syncs of the same store are not serialized: they race at the
// upsert level and the last writer wins per record.
type SyncService struct {
	shopify      ShopifyClient
	orders       OrderStore
	products     ProductStore
	runs         SyncRunStore
	integrations IntegrationStore
	metrics      Metrics
	logger       *slog.Logger
	config       config.SyncConfig
	now          func() time.Time
}

func NewSyncService(
	shopify ShopifyClient,
	orders OrderStore,
	products ProductStore,
	runs SyncRunStore,
	integrations IntegrationStore,
	metrics Metrics,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		shopify:      shopify,
		orders:       orders,
		products:     products,
		runs:         runs,
		integrations: integrations,
		metrics:      metrics,
		logger:       logger.With("component", "sync"),
		config:       cfg,
		now:          time.Now,
	}
}

// pageFunc fetches and upserts one page. It returns how many records the
// provider sent and bumps upserted for every record written.
type pageFunc func(ctx context.Context, page int, upserted *int) (int, error)

func (s *SyncService) SyncOrders(ctx context.Context, storeID string, creds domain.ShopifyCredentials) (*domain.SyncRun, error) {
	return s.run(ctx, storeID, domain.SyncOrders, func(ctx context.Context, page int, upserted *int) (int, error) {
		orders, err := s.shopify.FetchOrdersPage(ctx, &creds, page, s.config.PageSize)
		if err != nil {
			return 0, fmt.Errorf("fetch orders page %d: %w", page, err)
		}
		for i := range orders {
			o := &orders[i]
			o.StoreID = storeID
			if err := s.orders.Upsert(ctx, o); err != nil {
				return len(orders), fmt.Errorf("upsert order %s: %w", o.ID, err)
			}
			*upserted++
		}
		return len(orders), nil
	})
}

func (s *SyncService) SyncProducts(ctx context.Context, storeID string, creds domain.ShopifyCredentials) (*domain.SyncRun, error) {
	return s.run(ctx, storeID, domain.SyncProducts, func(ctx context.Context, page int, upserted *int) (int, error) {
		products, err := s.shopify.FetchProductsPage(ctx, &creds, page, s.config.PageSize)
		if err != nil {
			return 0, fmt.Errorf("fetch products page %d: %w", page, err)
		}
		for i := range products {
			p := &products[i]
			p.StoreID = storeID
			if err := s.products.Upsert(ctx, p); err != nil {
				return len(products), fmt.Errorf("upsert product %s: %w", p.ID, err)
			}
			*upserted++
		}
		return len(products), nil
	})
}

// SyncStore runs the orders and products syncs concurrently. One leg failing
// does not cancel the other; every leg error is returned.
func (s *SyncService) SyncStore(ctx context.Context, storeID string, creds domain.ShopifyCredentials) (*domain.StoreSyncResult, error) {
	var (
		wg          sync.WaitGroup
		result      domain.StoreSyncResult
		ordersErr   error
		productsErr error
	)

	wg.Go(func() {
		result.OrdersRun, ordersErr = s.SyncOrders(ctx, storeID, creds)
	})
	wg.Go(func() {
		result.ProductsRun, productsErr = s.SyncProducts(ctx, storeID, creds)
	})
	wg.Wait()

	if result.OrdersRun != nil {
		result.Orders = result.OrdersRun.RecordCount
	}
	if result.ProductsRun != nil {
		result.Products = result.ProductsRun.RecordCount
	}

	return &result, errors.Join(ordersErr, productsErr)
}

func (s *SyncService) run(ctx context.Context, storeID string, syncType domain.SyncType, fetch pageFunc) (*domain.SyncRun, error) {
	started := s.now()
	run := &domain.SyncRun{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		SyncType:  syncType,
		Status:    domain.SyncRunning,
		StartedAt: started,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}

	logger := s.logger.With("store_id", storeID, "sync_type", syncType, "run_id", run.ID)
	logger.Info("starting sync", "page_size", s.config.PageSize, "max_pages", s.config.MaxPages)

	upserted := 0
	syncErr := s.paginate(ctx, logger, fetch, &upserted)

	// The run must reach a terminal state even if the request was cancelled.
	finishCtx := context.WithoutCancel(ctx)
	finished := s.now()

	if syncErr != nil {
		run.Fail(upserted, syncErr, finished)
		if err := s.runs.Finish(finishCtx, run); err != nil {
			logger.Error("failed to record sync failure", "error", err)
		}
		s.metrics.ObserveSync(syncType, run.Status, upserted, finished.Sub(started))
		logger.Error("sync failed", "records", upserted, "error", syncErr)
		return run, syncErr
	}

	run.Complete(upserted, finished)
	if err := s.runs.Finish(finishCtx, run); err != nil {
		return run, fmt.Errorf("finish sync run: %w", err)
	}
	if err := s.integrations.TouchLastSync(finishCtx, storeID, domain.ProviderShopify, finished); err != nil {
		logger.Warn("failed to stamp integration last sync", "error", err)
	}

	s.metrics.ObserveSync(syncType, run.Status, upserted, finished.Sub(started))
	logger.Info("sync completed", "records", upserted, "duration", finished.Sub(started))
	return run, nil
}

// paginate walks pages from 1. A short page ends the walk; MaxPages caps it.
func (s *SyncService) paginate(ctx context.Context, logger *slog.Logger, fetch pageFunc, upserted *int) error {
	for page := 1; page <= s.config.MaxPages; page++ {
		fetched, err := fetch(ctx, page, upserted)
		if err != nil {
			return err
		}

		logger.Debug("synced page", "page", page, "fetched", fetched, "total", *upserted)

		if fetched < s.config.PageSize {
			return nil
		}
		if page == s.config.MaxPages {
			logger.Warn("page cap reached, remaining records left for the next sync", "max_pages", s.config.MaxPages)
		}
	}
	return nil
}
