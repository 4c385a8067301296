package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mers/internal/domain"
	"mers/internal/provider/shopify"
	"mers/internal/service/mocks"
)

const (
	orderPayload   = `{"id":4501,"order_number":1001,"email":"a@example.com","financial_status":"paid","fulfillment_status":null,"total_price":"59.90","subtotal_price":"55.00","total_tax":"4.90","total_discounts":"0.00","currency":"EUR","created_at":"2026-10-01T10:00:00Z","updated_at":"2026-10-01T11:00:00Z","cancelled_at":null,"line_items":[{"title":"Serum","price":"29.95","quantity":2}],"shipping_address":null}`
	productPayload = `{"id":77,"title":"Serum","handle":"serum","vendor":"Slim&Fit","product_type":"Skin","status":"active","variants":[{"id":1,"price":"29.95","inventory_quantity":4}],"images":[],"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-10-01T00:00:00Z","published_at":"2026-01-02T00:00:00Z"}`
	shopDomain     = "slimnfit.myshopify.com"
	testSecret     = "whsec"
)

type WebhookServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	stores    *mocks.MockStoreStore
	orders    *mocks.MockOrderStore
	products  *mocks.MockProductStore
	publisher *mocks.MockPublisher
	metrics   *mocks.MockMetrics

	store *domain.Store
}

func (s *WebhookServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.stores = mocks.NewMockStoreStore(s.ctrl)
	s.orders = mocks.NewMockOrderStore(s.ctrl)
	s.products = mocks.NewMockProductStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.metrics = mocks.NewMockMetrics(s.ctrl)
	s.metrics.EXPECT().ObserveWebhook(gomock.Any(), gomock.Any()).AnyTimes()

	s.store = &domain.Store{ID: "store-1", ShopifyDomain: shopDomain}
}

func (s *WebhookServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestWebhookServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WebhookServiceTestSuite))
}

func (s *WebhookServiceTestSuite) newService(secret string, publisher Publisher) *WebhookService {
	return NewWebhookService(secret, s.stores, s.orders, s.products, publisher, s.metrics,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func signed(topic, body string) Delivery {
	return Delivery{
		Body:       []byte(body),
		Signature:  shopify.Sign([]byte(body), testSecret),
		Topic:      topic,
		ShopDomain: shopDomain,
	}
}

func (s *WebhookServiceTestSuite) TestInvalidSignature_NoPersistence() {
	svc := s.newService(testSecret, nil)
	d := signed(TopicOrdersCreate, orderPayload)
	d.Signature = "bogus"

	err := svc.Handle(context.Background(), d)

	s.ErrorIs(err, domain.ErrInvalidSignature)
}

func (s *WebhookServiceTestSuite) TestSignatureCheckedBeforeHeaders() {
	svc := s.newService(testSecret, nil)
	d := signed("", orderPayload)
	d.Signature = "bogus"

	s.ErrorIs(svc.Handle(context.Background(), d), domain.ErrInvalidSignature)
}

func (s *WebhookServiceTestSuite) TestNoSecret_SkipsVerificationAndPersists() {
	ctx := context.Background()
	svc := s.newService("", nil)
	d := signed(TopicOrdersCreate, orderPayload)
	d.Signature = "bogus"

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(s.store, nil)
	s.orders.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, o *domain.Order) error {
		s.Equal("4501", o.ID)
		s.Equal("store-1", o.StoreID)
		s.Equal("1001", o.OrderNumber)
		s.True(o.SubtotalPrice.Valid)
		return nil
	})

	s.NoError(svc.Handle(ctx, d))
}

func (s *WebhookServiceTestSuite) TestMissingHeaders() {
	svc := s.newService(testSecret, nil)

	d := signed(TopicOrdersCreate, orderPayload)
	d.ShopDomain = ""
	s.ErrorIs(svc.Handle(context.Background(), d), domain.ErrMissingHeaders)

	d = signed("", orderPayload)
	s.ErrorIs(svc.Handle(context.Background(), d), domain.ErrMissingHeaders)
}

func (s *WebhookServiceTestSuite) TestUnknownStore() {
	ctx := context.Background()
	svc := s.newService(testSecret, nil)

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(nil, domain.ErrNotFound)

	s.ErrorIs(svc.Handle(ctx, signed(TopicOrdersPaid, orderPayload)), domain.ErrStoreNotFound)
}

func (s *WebhookServiceTestSuite) TestStoreLookupError() {
	ctx := context.Background()
	svc := s.newService(testSecret, nil)
	dbErr := errors.New("db down")

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(nil, dbErr)

	err := svc.Handle(ctx, signed(TopicOrdersPaid, orderPayload))
	s.ErrorIs(err, dbErr)
	s.NotErrorIs(err, domain.ErrStoreNotFound)
}

func (s *WebhookServiceTestSuite) TestOrderTopics_UpsertAndPublish() {
	ctx := context.Background()
	svc := s.newService(testSecret, s.publisher)

	for _, topic := range []string{TopicOrdersCreate, TopicOrdersUpdated, TopicOrdersPaid} {
		s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(s.store, nil)
		s.orders.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
		s.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e *domain.ChangeEvent) error {
			s.Equal(domain.ChangeUpsert, e.Action)
			s.Equal("order", e.Entity)
			s.Equal("4501", e.ID)
			s.Equal(topic, e.Topic)
			return nil
		})

		s.NoError(svc.Handle(ctx, signed(topic, orderPayload)), topic)
	}
}

func (s *WebhookServiceTestSuite) TestProductUpsert() {
	ctx := context.Background()
	svc := s.newService(testSecret, nil)

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(s.store, nil)
	s.products.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, p *domain.Product) error {
		s.Equal("77", p.ID)
		s.Equal(domain.ProductActive, p.Status)
		s.Require().Len(p.Variants, 1)
		return nil
	})

	s.NoError(svc.Handle(ctx, signed(TopicProductsUpdate, productPayload)))
}

func (s *WebhookServiceTestSuite) TestProductDelete_Archives() {
	ctx := context.Background()
	svc := s.newService(testSecret, s.publisher)

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(s.store, nil)
	s.products.EXPECT().Archive(ctx, "77").Return(true, nil)
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, e *domain.ChangeEvent) error {
		s.Equal(domain.ChangeArchive, e.Action)
		return nil
	})

	s.NoError(svc.Handle(ctx, signed(TopicProductsDelete, `{"id":77}`)))
}

func (s *WebhookServiceTestSuite) TestProductDelete_UnknownProductIsNoop() {
	ctx := context.Background()
	svc := s.newService(testSecret, s.publisher)

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(s.store, nil)
	s.products.EXPECT().Archive(ctx, "404").Return(false, nil)

	s.NoError(svc.Handle(ctx, signed(TopicProductsDelete, `{"id":404}`)))
}

func (s *WebhookServiceTestSuite) TestUnknownTopic_Noop() {
	ctx := context.Background()
	svc := s.newService(testSecret, s.publisher)

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(s.store, nil)

	s.NoError(svc.Handle(ctx, signed("customers/create", `{"id":1}`)))
}

func (s *WebhookServiceTestSuite) TestInvalidPayload() {
	ctx := context.Background()
	svc := s.newService(testSecret, nil)

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(s.store, nil)

	s.ErrorIs(svc.Handle(ctx, signed(TopicOrdersCreate, `{"broken"`)), domain.ErrInvalidPayload)
}

func (s *WebhookServiceTestSuite) TestPublishFailureFailsDelivery() {
	ctx := context.Background()
	svc := s.newService(testSecret, s.publisher)
	amqpErr := errors.New("channel closed")

	s.stores.EXPECT().GetByShopifyDomain(ctx, shopDomain).Return(s.store, nil)
	s.products.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)
	s.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(amqpErr)

	s.ErrorIs(svc.Handle(ctx, signed(TopicProductsCreate, productPayload)), amqpErr)
}

func (s *WebhookServiceTestSuite) TestOutcomeLabels() {
	s.Equal("applied", outcome(nil))
	s.Equal("invalid_signature", outcome(domain.ErrInvalidSignature))
	s.Equal("rejected", outcome(domain.ErrMissingHeaders))
	s.Equal("unknown_store", outcome(domain.ErrStoreNotFound))
	s.Equal("error", outcome(errors.New("x")))
}
