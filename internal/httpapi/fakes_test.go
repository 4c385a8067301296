package httpapi

import (
	"context"
	"encoding/json"

	"mers/internal/domain"
	"mers/internal/provider/meta"
	"mers/internal/service"
)

type fakeSetup struct {
	initResult *service.InitResult
	initErr    error
	store      *domain.Store
	storeErr   error
	status     *domain.StoreStatus
	stores     []domain.Store
	byID       map[string]*domain.Store
}

func (f *fakeSetup) Initialize(context.Context) (*service.InitResult, error) {
	return f.initResult, f.initErr
}

func (f *fakeSetup) CallerStore(context.Context) (*domain.Store, error) {
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	if f.store == nil {
		return nil, domain.ErrNoStore
	}
	return f.store, nil
}

func (f *fakeSetup) Status(context.Context) (*domain.StoreStatus, error) {
	if f.status == nil {
		return &domain.StoreStatus{}, nil
	}
	return f.status, nil
}

func (f *fakeSetup) ListStores(context.Context) ([]domain.Store, error) {
	return f.stores, nil
}

func (f *fakeSetup) StoreWithIntegrations(ctx context.Context, id string) (*domain.Store, error) {
	if id == "" {
		return f.CallerStore(ctx)
	}
	if st, ok := f.byID[id]; ok {
		return st, nil
	}
	return nil, domain.ErrNoStore
}

type fakeSyncer struct {
	gotStoreID string
	gotCreds   domain.ShopifyCredentials
	result     *domain.StoreSyncResult
	err        error
}

func (f *fakeSyncer) SyncStore(_ context.Context, storeID string, creds domain.ShopifyCredentials) (*domain.StoreSyncResult, error) {
	f.gotStoreID = storeID
	f.gotCreds = creds
	return f.result, f.err
}

type fakeAnalytics struct {
	gotDays int
	report  *domain.RevenueReport
	summary *domain.DaySummary
}

func (f *fakeAnalytics) Revenue(_ context.Context, _ string, days int) (*domain.RevenueReport, error) {
	f.gotDays = days
	return f.report, nil
}

func (f *fakeAnalytics) Summary(context.Context, string) (*domain.DaySummary, error) {
	return f.summary, nil
}

type fakeWebhooks struct {
	got service.Delivery
	err error
}

func (f *fakeWebhooks) Handle(_ context.Context, d service.Delivery) error {
	f.got = d
	return f.err
}

type fakeTasks struct {
	tasks   []domain.Task
	created *domain.Task
	err     error
}

func (f *fakeTasks) List(context.Context) ([]domain.Task, error) { return f.tasks, f.err }

func (f *fakeTasks) Create(_ context.Context, t *domain.Task) error {
	if f.err != nil {
		return f.err
	}
	t.ID = "task-1"
	f.created = t
	return nil
}

func (f *fakeTasks) Update(_ context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := &domain.Task{ID: id}
	if patch.Column != nil {
		t.Column = *patch.Column
	}
	return t, nil
}

func (f *fakeTasks) Delete(context.Context, string) error { return f.err }

type fakeShopify struct {
	gotCreds *domain.ShopifyCredentials
	gotLimit int
	shop     *domain.ShopInfo
	err      error
}

func (f *fakeShopify) FetchShop(_ context.Context, creds *domain.ShopifyCredentials) (*domain.ShopInfo, error) {
	f.gotCreds = creds
	return f.shop, f.err
}

func (f *fakeShopify) ListOrders(_ context.Context, creds *domain.ShopifyCredentials, _ string, limit int) (json.RawMessage, error) {
	f.gotCreds = creds
	f.gotLimit = limit
	return json.RawMessage(`{"orders":[]}`), f.err
}

func (f *fakeShopify) ListProducts(_ context.Context, creds *domain.ShopifyCredentials, limit int) (json.RawMessage, error) {
	f.gotCreds = creds
	f.gotLimit = limit
	return json.RawMessage(`{"products":[]}`), f.err
}

type fakeMeta struct {
	gotRange *meta.TimeRange
}

func (f *fakeMeta) FetchAccount(context.Context, *domain.MetaCredentials) (*meta.Account, error) {
	return &meta.Account{ID: "act_1", Name: "Main", Currency: "EUR"}, nil
}

func (f *fakeMeta) Insights(_ context.Context, _ *domain.MetaCredentials, tr *meta.TimeRange) (*meta.InsightsResponse, error) {
	f.gotRange = tr
	return &meta.InsightsResponse{Data: []meta.InsightsRow{{DateStart: "2026-10-01", Spend: "12.50"}}}, nil
}

type fakeResolver struct {
	bundles map[string]domain.StoreCredentials
}

func (f *fakeResolver) Resolve(id string) (*domain.StoreCredentials, error) {
	b, ok := f.bundles[id]
	if !ok {
		return nil, domain.ErrUnknownStore
	}
	return &b, nil
}

func (f *fakeResolver) Configured() []domain.StoreCredentials {
	out := make([]domain.StoreCredentials, 0, len(f.bundles))
	for _, b := range f.bundles {
		out = append(out, b)
	}
	return out
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeErrors struct{ observed []string }

func (f *fakeErrors) ObserveProviderError(provider, kind string) {
	f.observed = append(f.observed, provider+":"+kind)
}
