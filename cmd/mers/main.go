package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"mers/internal/config"
	"mers/internal/domain"
	"mers/internal/httpapi"
	"mers/internal/metrics"
	"mers/internal/provider/meta"
	"mers/internal/provider/shopify"
	"mers/internal/publisher"
	"mers/internal/service"
	"mers/internal/storage/migrations"
	"mers/internal/storage/postgres"
	"mers/internal/stores"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	logger.Info("connected to database")

	if err := migrations.Up(db.DB); err != nil {
		return err
	}
	logger.Info("migrations applied")

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	} else {
		logger.Info("change feed disabled")
	}

	m := metrics.New()

	userStore := postgres.NewUserStore(db)
	storeStore := postgres.NewStoreStore(db)
	integrationStore := postgres.NewIntegrationStore(db)
	adAccountStore := postgres.NewAdAccountStore(db)
	orderStore := postgres.NewOrderStore(db)
	productStore := postgres.NewProductStore(db)
	syncRunStore := postgres.NewSyncRunStore(db)
	taskStore := postgres.NewTaskStore(db)
	txManager := postgres.NewTransactionManager(db)

	shopifyCreds := domain.ShopifyCredentials{
		Domain:      cfg.Shopify.Domain,
		AccessToken: cfg.Shopify.AccessToken,
	}
	metaCreds := domain.MetaCredentials{
		AdAccountID: cfg.Meta.AdAccountID,
		AccessToken: cfg.Meta.AccessToken,
	}

	shopifyClient := shopify.New(shopify.Config{
		APIVersion: cfg.Shopify.APIVersion,
		Timeout:    cfg.Shopify.Timeout,
		Defaults:   shopifyCreds,
	}, logger)
	metaClient := meta.New(meta.Config{
		BaseURL:    cfg.Meta.BaseURL,
		APIVersion: cfg.Meta.APIVersion,
		Timeout:    cfg.Meta.Timeout,
		Defaults:   metaCreds,
	}, logger)

	setupService := service.NewSetupService(service.SetupDeps{
		Users:        userStore,
		Stores:       storeStore,
		Integrations: integrationStore,
		AdAccounts:   adAccountStore,
		Orders:       orderStore,
		Products:     productStore,
		Runs:         syncRunStore,
		TxManager:    txManager,
		Shopify:      shopifyClient,
		Meta:         metaClient,
	}, cfg.DevUser, shopifyCreds, metaCreds, logger)

	syncService := service.NewSyncService(
		shopifyClient,
		orderStore,
		productStore,
		syncRunStore,
		integrationStore,
		m,
		logger,
		cfg.Sync,
	)

	webhookService := service.NewWebhookService(
		cfg.Shopify.WebhookSecret,
		storeStore,
		orderStore,
		productStore,
		pub,
		m,
		logger,
	)

	server := httpapi.NewServer(httpapi.Deps{
		Setup:     setupService,
		Syncer:    syncService,
		Analytics: service.NewAnalyticsService(orderStore, syncRunStore),
		Webhooks:  webhookService,
		Tasks:     service.NewTaskService(taskStore, setupService),
		Shopify:   shopifyClient,
		Meta:      metaClient,
		Resolver:  stores.NewResolver(cfg.Stores),
		DB:        postgres.NewPinger(db),
		Errors:    m,
		Metrics:   m.Handler(),
	}, cfg.HTTP.AllowedOrigins, logger)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting mers api",
			"addr", cfg.HTTP.Addr,
			"shopify_api_version", cfg.Shopify.APIVersion,
			"max_pages", cfg.Sync.MaxPages,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
