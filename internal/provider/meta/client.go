package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mers/internal/domain"
	"mers/internal/provider"
)

const ProviderName = "meta"

type Config struct {
	BaseURL    string
	APIVersion string
	Timeout    time.Duration
	Defaults   domain.MetaCredentials
}

// Client calls the Meta Graph API. The access token travels as a query parameter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiVersion string
	defaults   domain.MetaCredentials
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: cfg.APIVersion,
		defaults:   cfg.Defaults,
		logger:     logger.With("provider", ProviderName),
	}
}

// NormalizeToken strips quoting picked up from .env files.
func NormalizeToken(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
}

// NormalizeAdAccountID strips quoting and ensures the act_ prefix.
func NormalizeAdAccountID(raw string) string {
	id := NormalizeToken(raw)
	if id == "" || strings.HasPrefix(id, "act_") {
		return id
	}
	return "act_" + id
}

func (c *Client) credentials(creds *domain.MetaCredentials) (domain.MetaCredentials, error) {
	cr := c.defaults
	if creds != nil {
		cr = *creds
	}
	cr.AccessToken = NormalizeToken(cr.AccessToken)
	cr.AdAccountID = NormalizeAdAccountID(cr.AdAccountID)
	if cr.AccessToken == "" {
		return cr, &domain.ConfigError{Field: "meta.access_token"}
	}
	if cr.AdAccountID == "" {
		return cr, &domain.ConfigError{Field: "meta.ad_account_id"}
	}
	return cr, nil
}

// Fetch performs a GET against path with params and decodes the JSON body into dst.
func (c *Client) Fetch(ctx context.Context, creds *domain.MetaCredentials, path string, params url.Values, dst any) error {
	cr, err := c.credentials(creds)
	if err != nil {
		return err
	}

	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("access_token", cr.AccessToken)

	endpoint := fmt.Sprintf("%s/%s%s?%s", c.baseURL, c.apiVersion, path, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full URL, which carries the token.
		return fmt.Errorf("execute request %s: %w", path, unwrapURLError(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := classify(resp, raw)
		c.logger.Warn("graph api request failed",
			"path", path,
			"status", resp.StatusCode,
			"kind", perr.Kind,
			"code", perr.Code,
		)
		return perr
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

type graphErrorBody struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func classify(resp *http.Response, body []byte) *provider.Error {
	perr := &provider.Error{
		Provider:   ProviderName,
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Kind:       provider.KindRequest,
		RetryAfter: provider.ParseRetryAfter(resp.Header.Get("Retry-After")),
	}

	var ge graphErrorBody
	parsed := json.Unmarshal(body, &ge) == nil && ge.Error != nil
	if parsed {
		perr.Code = ge.Error.Code
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || perr.Code == 190:
		perr.Kind = provider.KindAuthentication
		perr.Message = "authentication failed: invalid or expired access token"
	case perr.Code == 4 || perr.Code == 17 || perr.Code == 32 || resp.StatusCode == http.StatusTooManyRequests:
		perr.Kind = provider.KindRateLimit
		perr.Message = "rate limit exceeded"
	case resp.StatusCode >= 500:
		perr.Kind = provider.KindServer
		perr.Message = "server error"
	case parsed && ge.Error.Message != "":
		perr.Message = ge.Error.Message
	default:
		perr.Message = provider.Snippet(body, 500)
	}
	return perr
}

type Account struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
}

// FetchAccount returns the configured ad account's id, name and currency.
func (c *Client) FetchAccount(ctx context.Context, creds *domain.MetaCredentials) (*Account, error) {
	cr, err := c.credentials(creds)
	if err != nil {
		return nil, err
	}
	var acc Account
	params := url.Values{"fields": {"id,name,currency"}}
	if err := c.Fetch(ctx, &cr, "/"+cr.AdAccountID, params, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

type ActionValue struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

type InsightsRow struct {
	DateStart    string        `json:"date_start"`
	DateStop     string        `json:"date_stop"`
	Spend        string        `json:"spend,omitempty"`
	Impressions  string        `json:"impressions,omitempty"`
	Clicks       string        `json:"clicks,omitempty"`
	CPC          string        `json:"cpc,omitempty"`
	CPM          string        `json:"cpm,omitempty"`
	Actions      []ActionValue `json:"actions,omitempty"`
	ActionValues []ActionValue `json:"action_values,omitempty"`
	PurchaseROAS []ActionValue `json:"purchase_roas,omitempty"`
}

type InsightsResponse struct {
	Data []InsightsRow `json:"data"`
}

// TimeRange bounds an insights query. Both ends must be YYYY-MM-DD.
type TimeRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

var insightsFields = strings.Join([]string{
	"date_start", "date_stop", "spend", "impressions", "clicks", "cpc", "cpm",
	"actions", "action_values", "purchase_roas",
}, ",")

// Insights returns daily account-level insights, optionally bounded by tr.
func (c *Client) Insights(ctx context.Context, creds *domain.MetaCredentials, tr *TimeRange) (*InsightsResponse, error) {
	cr, err := c.credentials(creds)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"level":          {"account"},
		"time_increment": {"1"},
		"fields":         {insightsFields},
	}
	if tr != nil {
		b, err := json.Marshal(tr)
		if err != nil {
			return nil, fmt.Errorf("encode time range: %w", err)
		}
		params.Set("time_range", string(b))
	}

	var resp InsightsResponse
	if err := c.Fetch(ctx, &cr, "/"+cr.AdAccountID+"/insights", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns YYYY-MM-DD (UTC).
func NormalizeDate(s string) (string, error) {
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return s, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "", fmt.Errorf("invalid date: %s", s)
	}
	return t.UTC().Format(time.DateOnly), nil
}
