package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goshopify "github.com/bold-commerce/go-shopify/v4"

	"mers/internal/domain"
	"mers/internal/provider"
)

const ProviderName = "shopify"

const (
	orderFields   = "id,created_at,total_price,currency,financial_status,fulfillment_status,cancel_reason,cancelled_at,total_discounts,total_tax,line_items"
	productFields = "id,title,handle,status,vendor,product_type,variants,created_at,updated_at"
)

// Config holds Shopify admin client configuration.
type Config struct {
	APIVersion string
	Timeout    time.Duration
	Defaults   domain.ShopifyCredentials
	// Transport replaces the default round tripper when set.
	Transport http.RoundTripper
}

// Client performs authenticated calls against the Shopify Admin REST API.
// A go-shopify client is built per call since credentials vary per store.
type Client struct {
	httpClient *http.Client
	apiVersion string
	defaults   domain.ShopifyCredentials
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	logger = logger.With("provider", ProviderName)
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		apiVersion: cfg.APIVersion,
		defaults:   cfg.Defaults,
		logger:     logger,
	}
}

// admin returns a go-shopify client for creds, falling back to the
// single-tenant defaults when creds is nil.
func (c *Client) admin(creds *domain.ShopifyCredentials) (*goshopify.Client, error) {
	cr := c.defaults
	if creds != nil {
		cr = *creds
	}
	if cr.Domain == "" {
		return nil, &domain.ConfigError{Field: "shopify.domain"}
	}
	if cr.AccessToken == "" {
		return nil, &domain.ConfigError{Field: "shopify.access_token"}
	}

	client, err := goshopify.NewClient(goshopify.App{}, cr.Domain, cr.AccessToken,
		goshopify.WithVersion(c.apiVersion),
		goshopify.WithHTTPClient(c.httpClient),
		goshopify.WithLogger(&leveledLogger{logger: c.logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("create shopify client: %w", err)
	}
	return client, nil
}

// failure maps go-shopify response errors onto provider.Error. Transport and
// decode errors are returned wrapped but otherwise untouched.
func (c *Client) failure(resource string, err error) error {
	perr := classify(err)
	if perr == nil {
		return fmt.Errorf("%s: %w", resource, err)
	}
	c.logger.Warn("admin api request failed",
		"resource", resource,
		"status", perr.Status,
		"kind", perr.Kind,
	)
	return perr
}

func classify(err error) *provider.Error {
	var (
		rateErr   goshopify.RateLimitError
		respErr   goshopify.ResponseError
		decodeErr goshopify.ResponseDecodingError
		status    int
		message   string
	)
	switch {
	case errors.As(err, &rateErr):
		perr := newError(http.StatusTooManyRequests)
		perr.Kind = provider.KindRateLimit
		perr.Message = "rate limit exceeded"
		perr.RetryAfter = time.Duration(rateErr.RetryAfter) * time.Second
		return perr
	case errors.As(err, &respErr):
		status, message = respErr.Status, respErr.Error()
	case errors.As(err, &decodeErr) && decodeErr.Status != 0:
		// Error responses whose body is not JSON.
		status, message = decodeErr.Status, string(decodeErr.Body)
	default:
		return nil
	}

	perr := newError(status)
	switch {
	case status == http.StatusUnauthorized:
		perr.Kind = provider.KindAuthentication
		perr.Message = "authentication failed"
	case status >= 500:
		perr.Kind = provider.KindServer
		perr.Message = "server error"
	default:
		perr.Kind = provider.KindRequest
		perr.Message = provider.Snippet([]byte(message), 400)
	}
	return perr
}

func newError(status int) *provider.Error {
	return &provider.Error{
		Provider:   ProviderName,
		Status:     status,
		StatusText: http.StatusText(status),
	}
}

// FetchShop returns the shop resource for the given credentials.
func (c *Client) FetchShop(ctx context.Context, creds *domain.ShopifyCredentials) (*domain.ShopInfo, error) {
	client, err := c.admin(creds)
	if err != nil {
		return nil, err
	}
	shop, err := client.Shop.Get(ctx, nil)
	if err != nil {
		return nil, c.failure("get shop", err)
	}
	if shop == nil {
		return nil, fmt.Errorf("decode shop: %w", domain.ErrInvalidPayload)
	}
	return &domain.ShopInfo{
		Name:            shop.Name,
		MyshopifyDomain: shop.MyshopifyDomain,
		Currency:        shop.Currency,
		Timezone:        shop.Timezone,
	}, nil
}

// FetchOrdersPage returns one page of orders of any status, pages counting from 1.
// The returned orders carry no store id.
func (c *Client) FetchOrdersPage(ctx context.Context, creds *domain.ShopifyCredentials, page, limit int) ([]domain.Order, error) {
	client, err := c.admin(creds)
	if err != nil {
		return nil, err
	}
	orders, err := client.Order.List(ctx, goshopify.OrderListOptions{
		ListOptions: goshopify.ListOptions{Page: page, Limit: limit},
		Status:      goshopify.OrderStatusAny,
	})
	if err != nil {
		return nil, c.failure("list orders", err)
	}
	out := make([]domain.Order, 0, len(orders))
	for i := range orders {
		out = append(out, *OrderToDomain(&orders[i], ""))
	}
	return out, nil
}

// FetchProductsPage returns one page of products, pages counting from 1.
// The returned products carry no store id.
func (c *Client) FetchProductsPage(ctx context.Context, creds *domain.ShopifyCredentials, page, limit int) ([]domain.Product, error) {
	client, err := c.admin(creds)
	if err != nil {
		return nil, err
	}
	products, err := client.Product.List(ctx, goshopify.ProductListOptions{
		ListOptions: goshopify.ListOptions{Page: page, Limit: limit},
	})
	if err != nil {
		return nil, c.failure("list products", err)
	}
	out := make([]domain.Product, 0, len(products))
	for i := range products {
		out = append(out, *ProductToDomain(&products[i], ""))
	}
	return out, nil
}

// ListOrders is the dashboard pass-through: recent orders with a fixed field
// list. since accepts RFC 3339 or YYYY-MM-DD.
func (c *Client) ListOrders(ctx context.Context, creds *domain.ShopifyCredentials, since string, limit int) (json.RawMessage, error) {
	opts := goshopify.OrderListOptions{
		ListOptions: goshopify.ListOptions{Limit: limit, Fields: orderFields},
		Status:      goshopify.OrderStatusAny,
	}
	if since != "" {
		t, err := parseSince(since)
		if err != nil {
			return nil, err
		}
		opts.CreatedAtMin = t
	}
	return c.raw(ctx, creds, "orders.json", opts)
}

// ListProducts is the dashboard pass-through: products with a fixed field list.
func (c *Client) ListProducts(ctx context.Context, creds *domain.ShopifyCredentials, limit int) (json.RawMessage, error) {
	return c.raw(ctx, creds, "products.json", goshopify.ProductListOptions{
		ListOptions: goshopify.ListOptions{Limit: limit, Fields: productFields},
	})
}

func (c *Client) raw(ctx context.Context, creds *domain.ShopifyCredentials, path string, opts any) (json.RawMessage, error) {
	client, err := c.admin(creds)
	if err != nil {
		return nil, err
	}
	var resp json.RawMessage
	if err := client.Get(ctx, path, &resp, opts); err != nil {
		return nil, c.failure("get "+path, err)
	}
	return resp, nil
}

func parseSince(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: since %q is not a date", domain.ErrInvalidPayload, v)
	}
	return t, nil
}
