package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mers/internal/domain"
	"mers/internal/provider/meta"
	"mers/internal/service"
)

type Setup interface {
	Initialize(ctx context.Context) (*service.InitResult, error)
	CallerStore(ctx context.Context) (*domain.Store, error)
	Status(ctx context.Context) (*domain.StoreStatus, error)
	ListStores(ctx context.Context) ([]domain.Store, error)
	StoreWithIntegrations(ctx context.Context, storeID string) (*domain.Store, error)
}

type Syncer interface {
	SyncStore(ctx context.Context, storeID string, creds domain.ShopifyCredentials) (*domain.StoreSyncResult, error)
}

type Analytics interface {
	Revenue(ctx context.Context, storeID string, days int) (*domain.RevenueReport, error)
	Summary(ctx context.Context, storeID string) (*domain.DaySummary, error)
}

type Webhooks interface {
	Handle(ctx context.Context, d service.Delivery) error
}

type Tasks interface {
	List(ctx context.Context) ([]domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type ShopifyAPI interface {
	FetchShop(ctx context.Context, creds *domain.ShopifyCredentials) (*domain.ShopInfo, error)
	ListOrders(ctx context.Context, creds *domain.ShopifyCredentials, since string, limit int) (json.RawMessage, error)
	ListProducts(ctx context.Context, creds *domain.ShopifyCredentials, limit int) (json.RawMessage, error)
}

type MetaAPI interface {
	FetchAccount(ctx context.Context, creds *domain.MetaCredentials) (*meta.Account, error)
	Insights(ctx context.Context, creds *domain.MetaCredentials, tr *meta.TimeRange) (*meta.InsightsResponse, error)
}

type StoreResolver interface {
	Resolve(id string) (*domain.StoreCredentials, error)
	Configured() []domain.StoreCredentials
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// ErrorObserver counts upstream failures surfaced to clients.
type ErrorObserver interface {
	ObserveProviderError(provider, kind string)
}

type Deps struct {
	Setup     Setup
	Syncer    Syncer
	Analytics Analytics
	Webhooks  Webhooks
	Tasks     Tasks
	Shopify   ShopifyAPI
	Meta      MetaAPI
	Resolver  StoreResolver
	DB        Pinger
	Errors    ErrorObserver
	Metrics   http.Handler
}

type Server struct {
	Deps
	allowedOrigins []string
	logger         *slog.Logger
}

func NewServer(deps Deps, allowedOrigins []string, logger *slog.Logger) *Server {
	return &Server{
		Deps:           deps,
		allowedOrigins: allowedOrigins,
		logger:         logger.With("component", "http"),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Get("/dbping", s.dbPing)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}

	r.Post("/init", s.initialize)
	r.Post("/sync/shopify", s.syncShopify)
	r.Post("/webhooks/{provider}", s.webhook)

	r.Get("/status", s.status)
	r.Get("/stores", s.listStores)
	r.Get("/stores/configured", s.configuredStores)
	r.Get("/integrations", s.integrations)

	r.Get("/analytics/revenue", s.revenue)
	r.Get("/dashboard/summary", s.summary)

	r.Route("/shopify", func(r chi.Router) {
		r.Get("/shop", s.shopifyShop)
		r.Get("/orders", s.shopifyOrders)
		r.Get("/products", s.shopifyProducts)
	})
	r.Route("/meta", func(r chi.Router) {
		r.Get("/account", s.metaAccount)
		r.Get("/insights", s.metaInsights)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Patch("/{id}", s.updateTask)
		r.Delete("/{id}", s.deleteTask)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) dbPing(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.Ping(r.Context()); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"db": "ok"})
}
