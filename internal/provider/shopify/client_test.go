package shopify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mers/internal/domain"
	"mers/internal/provider"
)

// handlerTransport serves requests from an in-process handler so the client
// can keep its https://<shop>.myshopify.com base URL.
type handlerTransport struct {
	h http.Handler
}

func (t handlerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.h.ServeHTTP(rec, r)
	return rec.Result(), nil
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, domain.ShopifyCredentials) {
	t.Helper()
	creds := domain.ShopifyCredentials{Domain: "slimnfit.myshopify.com", AccessToken: "shpat_test"}
	c := New(Config{
		APIVersion: "2025-01",
		Timeout:    5 * time.Second,
		Defaults:   creds,
		Transport:  handlerTransport{h: h},
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return c, creds
}

func TestFetchShop_SendsTokenAndDecodes(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "slimnfit.myshopify.com", r.URL.Host)
		assert.Equal(t, "https", r.URL.Scheme)
		assert.Equal(t, "/admin/api/2025-01/shop.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"shop":{"name":"Slim&Fit","myshopify_domain":"slimnfit.myshopify.com","currency":"EUR","timezone":"(GMT+01:00) Europe/Paris"}}`)
	})

	shop, err := c.FetchShop(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Slim&Fit", shop.Name)
	assert.Equal(t, "slimnfit.myshopify.com", shop.MyshopifyDomain)
	assert.Equal(t, "EUR", shop.Currency)
}

func TestFetchShop_MissingShopObject(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := c.FetchShop(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestCredentialOverride(t *testing.T) {
	var gotToken, gotHost string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Shopify-Access-Token")
		gotHost = r.URL.Host
		_, _ = io.WriteString(w, `{"products":[]}`)
	})

	override := domain.ShopifyCredentials{Domain: "dermaluxe.myshopify.com", AccessToken: "shpat_other"}
	_, err := c.FetchProductsPage(context.Background(), &override, 1, 250)
	require.NoError(t, err)
	assert.Equal(t, "shpat_other", gotToken)
	assert.Equal(t, "dermaluxe.myshopify.com", gotHost)
}

func TestMissingCredentials(t *testing.T) {
	c := New(Config{APIVersion: "2025-01"}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.FetchShop(context.Background(), nil)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "shopify.domain", cfgErr.Field)

	_, err = c.FetchShop(context.Background(), &domain.ShopifyCredentials{Domain: "x.myshopify.com"})
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "shopify.access_token", cfgErr.Field)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		retryAfter  string
		body        string
		wantKind    provider.Kind
		wantMessage string
		wantRetry   time.Duration
	}{
		{name: "unauthorized", status: 401, body: `{"errors":"bad token"}`, wantKind: provider.KindAuthentication, wantMessage: "authentication failed"},
		{name: "rate limited", status: 429, retryAfter: "2.0", wantKind: provider.KindRateLimit, wantMessage: "rate limit exceeded", wantRetry: 2 * time.Second},
		{name: "server", status: 503, wantKind: provider.KindServer, wantMessage: "server error"},
		{name: "server html", status: 502, body: `<html>bad gateway</html>`, wantKind: provider.KindServer, wantMessage: "server error"},
		{name: "validation", status: 422, body: `{"errors":{"title":["can't be blank"]}}`, wantKind: provider.KindRequest, wantMessage: "title: can't be blank"},
		{name: "plain text", status: 404, body: `Not Found`, wantKind: provider.KindRequest, wantMessage: "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set("Retry-After", tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.FetchOrdersPage(context.Background(), nil, 1, 250)
			pe, ok := provider.AsError(err)
			require.True(t, ok, "expected provider error, got %v", err)
			assert.Equal(t, tt.status, pe.Status)
			assert.Equal(t, tt.wantKind, pe.Kind)
			assert.Equal(t, tt.wantMessage, pe.Message)
			assert.Equal(t, tt.wantRetry, pe.RetryAfter)
			assert.NotContains(t, pe.Error(), "shpat_test")
		})
	}
}

func TestTransportErrorIsNotProviderError(t *testing.T) {
	c, _ := newTestClient(t, nil)
	c.httpClient.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset")
	})

	_, err := c.FetchOrdersPage(context.Background(), nil, 1, 250)
	require.Error(t, err)
	_, ok := provider.AsError(err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "connection reset")
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestFetchOrdersPage_QueryAndMapping(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2025-01/orders.json", r.URL.Path)
		assert.Equal(t, "any", r.URL.Query().Get("status"))
		assert.Equal(t, "250", r.URL.Query().Get("limit"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = io.WriteString(w, `{"orders":[{
			"id": 4501,
			"order_number": 1001,
			"email": "a@example.com",
			"financial_status": "paid",
			"fulfillment_status": null,
			"total_price": "59.90",
			"subtotal_price": null,
			"total_tax": "4.90",
			"total_discounts": "0.00",
			"currency": "EUR",
			"created_at": "2026-10-01T10:00:00+02:00",
			"updated_at": "2026-10-01T11:00:00+02:00",
			"cancelled_at": null,
			"line_items": [{"title":"Serum","sku":null,"price":"29.95","quantity":2,"product_id":77,"variant_id":null}],
			"shipping_address": {"city":"Lyon"}
		}]}`)
	})

	orders, err := c.FetchOrdersPage(context.Background(), nil, 2, 250)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "4501", o.ID)
	assert.Equal(t, "1001", o.OrderNumber)
	assert.Empty(t, o.StoreID)
	assert.True(t, o.IsPaid())
	require.NotNil(t, o.Email)
	assert.Equal(t, "a@example.com", *o.Email)
	assert.Nil(t, o.FulfillmentStatus)
	assert.False(t, o.SubtotalPrice.Valid)
	assert.Equal(t, "59.9", o.TotalPrice.String())
	assert.Nil(t, o.CancelledAt)
	require.Len(t, o.LineItems, 1)
	assert.Equal(t, "", o.LineItems[0].SKU)
	require.NotNil(t, o.LineItems[0].ProductID)
	assert.Equal(t, int64(77), *o.LineItems[0].ProductID)
	assert.Nil(t, o.LineItems[0].VariantID)
	assert.JSONEq(t, `{"city":"Lyon"}`, string(o.ShippingAddress))
}

func TestFetchProductsPage_Mapping(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2025-01/products.json", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		_, _ = io.WriteString(w, `{"products":[{
			"id": 9,
			"title": "Cream",
			"handle": "cream",
			"vendor": "",
			"status": "draft",
			"variants": [{"id": 1, "sku": "CR-1", "price": "10.00", "compare_at_price": "12.500", "inventory_quantity": 3}],
			"created_at": "2026-01-01T00:00:00Z",
			"updated_at": "2026-01-02T00:00:00Z"
		}]}`)
	})

	products, err := c.FetchProductsPage(context.Background(), nil, 3, 50)
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, "9", p.ID)
	assert.Equal(t, domain.ProductDraft, p.Status)
	assert.Nil(t, p.Vendor)
	assert.Nil(t, p.Images)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, "CR-1", p.Variants[0].SKU)
	assert.Equal(t, "10.00", p.Variants[0].Price)
	require.NotNil(t, p.Variants[0].CompareAtPrice)
	assert.Equal(t, "12.500", *p.Variants[0].CompareAtPrice)
}

func TestListOrders_PassThrough(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/admin/api/2025-01/orders.json", r.URL.Path)
		assert.Equal(t, "any", q.Get("status"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, orderFields, q.Get("fields"))
		assert.Equal(t, "2026-10-01T00:00:00Z", q.Get("created_at_min"))
		_, _ = io.WriteString(w, `{"orders":[{"id":1,"total_price":"5.00"}]}`)
	})

	raw, err := c.ListOrders(context.Background(), nil, "2026-10-01", 50)
	require.NoError(t, err)
	assert.JSONEq(t, `{"orders":[{"id":1,"total_price":"5.00"}]}`, string(raw))
}

func TestListOrders_RejectsBadSince(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := c.ListOrders(context.Background(), nil, "last tuesday", 50)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestListProducts_PassThrough(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, productFields, r.URL.Query().Get("fields"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"products":[]}`)
	})

	raw, err := c.ListProducts(context.Background(), nil, 25)
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":[]}`, string(raw))
}

func TestDecodeWebhookPayloads(t *testing.T) {
	p, err := DecodeProduct([]byte(`{"id":9,"title":"Cream","handle":"cream","status":"active","variants":[{"id":1,"price":"10.00","inventory_quantity":3}],"images":[],"created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-02T00:00:00Z","published_at":null}`))
	require.NoError(t, err)
	dp := ProductToDomain(p, "s")
	assert.Equal(t, "9", dp.ID)
	assert.Equal(t, "s", dp.StoreID)
	assert.Equal(t, domain.ProductActive, dp.Status)
	assert.Nil(t, dp.PublishedAt)
	assert.Equal(t, "[]", string(dp.Images))
	require.Len(t, dp.Variants, 1)
	assert.Equal(t, 3, dp.Variants[0].InventoryQuantity)

	_, err = DecodeOrder([]byte(`{"email":"x"}`))
	assert.True(t, errors.Is(err, domain.ErrInvalidPayload))

	_, err = DecodeOrder([]byte(`not json`))
	assert.True(t, errors.Is(err, domain.ErrInvalidPayload))

	id, err := DecodeDeletedProductID([]byte(`{"id":123}`))
	require.NoError(t, err)
	assert.Equal(t, "123", id)

	_, err = DecodeDeletedProductID([]byte(`{}`))
	assert.True(t, errors.Is(err, domain.ErrInvalidPayload))
}

func TestLeveledLogger_RoutesToSlog(t *testing.T) {
	var buf bytes.Buffer
	l := &leveledLogger{logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))}

	l.Debugf("RESP: %s", "body")
	assert.Empty(t, buf.String())

	l.Warnf("rate limited waiting %s", "2s")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), "rate limited waiting 2s")
}

func TestVerifyWebhook(t *testing.T) {
	body := []byte(`{"id":1}`)
	sig := Sign(body, "s3cret")

	assert.True(t, VerifyWebhook(body, sig, "s3cret"))
	assert.False(t, VerifyWebhook(body, sig, "other"))
	assert.False(t, VerifyWebhook([]byte(`{"id":2}`), sig, "s3cret"))
	assert.False(t, VerifyWebhook(body, "", "s3cret"))
}
