package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mers/internal/domain"
	"mers/internal/provider/shopify"
)

const (
	TopicOrdersCreate   = "orders/create"
	TopicOrdersUpdated  = "orders/updated"
	TopicOrdersPaid     = "orders/paid"
	TopicProductsCreate = "products/create"
	TopicProductsUpdate = "products/update"
	TopicProductsDelete = "products/delete"
)

// Delivery is one inbound webhook request.
type Delivery struct {
	Body       []byte
	Signature  string
	Topic      string
	ShopDomain string
}

// WebhookService applies pushed order and product changes with the same
// upsert semantics as the pull sync. Deliveries are not recorded as sync runs.
type WebhookService struct {
	secret    string
	stores    StoreStore
	orders    OrderStore
	products  ProductStore
	publisher Publisher
	metrics   Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewWebhookService builds the reconciler. An empty secret disables signature
// verification; publisher may be nil.
func NewWebhookService(
	secret string,
	stores StoreStore,
	orders OrderStore,
	products ProductStore,
	publisher Publisher,
	metrics Metrics,
	logger *slog.Logger,
) *WebhookService {
	logger = logger.With("component", "webhook", "provider", "shopify")
	if secret == "" {
		logger.Warn("webhook secret not configured, signature verification disabled")
	}
	return &WebhookService{
		secret:    secret,
		stores:    stores,
		orders:    orders,
		products:  products,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle verifies and applies one delivery. Unknown topics are accepted as no-ops.
func (s *WebhookService) Handle(ctx context.Context, d Delivery) error {
	err := s.handle(ctx, d)
	s.metrics.ObserveWebhook(d.Topic, outcome(err))
	return err
}

func (s *WebhookService) handle(ctx context.Context, d Delivery) error {
	if s.secret != "" {
		if !shopify.VerifyWebhook(d.Body, d.Signature, s.secret) {
			return domain.ErrInvalidSignature
		}
	} else {
		s.logger.Debug("skipping signature verification", "topic", d.Topic)
	}

	if d.Topic == "" || d.ShopDomain == "" {
		return domain.ErrMissingHeaders
	}

	store, err := s.stores.GetByShopifyDomain(ctx, d.ShopDomain)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrStoreNotFound
	}
	if err != nil {
		return fmt.Errorf("find store: %w", err)
	}

	logger := s.logger.With("topic", d.Topic, "store_id", store.ID)

	switch d.Topic {
	case TopicOrdersCreate, TopicOrdersUpdated, TopicOrdersPaid:
		payload, err := shopify.DecodeOrder(d.Body)
		if err != nil {
			return err
		}
		order := shopify.OrderToDomain(payload, store.ID)
		if err := s.orders.Upsert(ctx, order); err != nil {
			return fmt.Errorf("upsert order %s: %w", order.ID, err)
		}
		logger.Info("order applied", "order_id", order.ID, "financial_status", order.FinancialStatus)
		return s.publish(ctx, domain.ChangeUpsert, "order", order.ID, store.ID, d.Topic)

	case TopicProductsCreate, TopicProductsUpdate:
		payload, err := shopify.DecodeProduct(d.Body)
		if err != nil {
			return err
		}
		product := shopify.ProductToDomain(payload, store.ID)
		if err := s.products.Upsert(ctx, product); err != nil {
			return fmt.Errorf("upsert product %s: %w", product.ID, err)
		}
		logger.Info("product applied", "product_id", product.ID, "status", product.Status)
		return s.publish(ctx, domain.ChangeUpsert, "product", product.ID, store.ID, d.Topic)

	case TopicProductsDelete:
		id, err := shopify.DecodeDeletedProductID(d.Body)
		if err != nil {
			return err
		}
		found, err := s.products.Archive(ctx, id)
		if err != nil {
			return fmt.Errorf("archive product %s: %w", id, err)
		}
		if !found {
			logger.Info("delete for unknown product ignored", "product_id", id)
			return nil
		}
		logger.Info("product archived", "product_id", id)
		return s.publish(ctx, domain.ChangeArchive, "product", id, store.ID, d.Topic)

	default:
		logger.Debug("ignoring unhandled topic")
		return nil
	}
}

func (s *WebhookService) publish(ctx context.Context, action domain.ChangeAction, entity, id, storeID, topic string) error {
	if s.publisher == nil {
		return nil
	}
	event := &domain.ChangeEvent{
		Action:    action,
		Entity:    entity,
		ID:        id,
		StoreID:   storeID,
		Topic:     topic,
		Timestamp: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("publish %s %s: %w", entity, id, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, domain.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, domain.ErrMissingHeaders), errors.Is(err, domain.ErrInvalidPayload):
		return "rejected"
	case errors.Is(err, domain.ErrStoreNotFound):
		return "unknown_store"
	default:
		return "error"
	}
}
