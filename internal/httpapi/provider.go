package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mers/internal/domain"
	"mers/internal/provider/meta"
)

const (
	defaultListLimit = 50
	maxListLimit     = 250
)

// credentials resolves ?store= to a configured bundle. A nil bundle means the
// clients fall back to their single-tenant defaults.
func (s *Server) credentials(r *http.Request) (*domain.StoreCredentials, error) {
	id := r.URL.Query().Get("store")
	if id == "" {
		return nil, nil
	}
	return s.Resolver.Resolve(id)
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return defaultListLimit
	}
	return min(n, maxListLimit)
}

func (s *Server) shopifyShop(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.credentials(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var creds *domain.ShopifyCredentials
	if bundle != nil {
		creds = &bundle.Shopify
	}

	shop, err := s.Shopify.FetchShop(r.Context(), creds)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{
		"name":            shop.Name,
		"myshopifyDomain": shop.MyshopifyDomain,
		"currency":        shop.Currency,
		"timezone":        shop.Timezone,
	})
}

func (s *Server) shopifyOrders(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.credentials(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var creds *domain.ShopifyCredentials
	if bundle != nil {
		creds = &bundle.Shopify
	}

	q := r.URL.Query()
	raw, err := s.Shopify.ListOrders(r.Context(), creds, q.Get("since"), parseLimit(q.Get("limit")))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, raw)
}

func (s *Server) shopifyProducts(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.credentials(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var creds *domain.ShopifyCredentials
	if bundle != nil {
		creds = &bundle.Shopify
	}

	raw, err := s.Shopify.ListProducts(r.Context(), creds, parseLimit(r.URL.Query().Get("limit")))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, raw)
}

func (s *Server) metaAccount(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.credentials(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var creds *domain.MetaCredentials
	if bundle != nil {
		creds = &bundle.Meta
	}

	acc, err := s.Meta.FetchAccount(r.Context(), creds)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, acc)
}

// timeRange builds the insights window. until defaults to today (UTC) when
// only since is given; no window means the provider default.
func timeRange(since, until string, now time.Time) (*meta.TimeRange, error) {
	if since == "" && until == "" {
		return nil, nil
	}
	if since == "" {
		return nil, fmt.Errorf("%w: since is required when until is set", domain.ErrInvalidPayload)
	}

	from, err := meta.NormalizeDate(since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	to := now.UTC().Format(time.DateOnly)
	if until != "" {
		if to, err = meta.NormalizeDate(until); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
	}
	return &meta.TimeRange{Since: from, Until: to}, nil
}

func (s *Server) metaInsights(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.credentials(r)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	var creds *domain.MetaCredentials
	if bundle != nil {
		creds = &bundle.Meta
	}

	q := r.URL.Query()
	tr, err := timeRange(q.Get("since"), q.Get("until"), time.Now())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	resp, err := s.Meta.Insights(r.Context(), creds, tr)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, resp.Data)
}
