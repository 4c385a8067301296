package stores

import (
	"fmt"
	"strings"

	"mers/internal/config"
	"mers/internal/domain"
)

// Resolver maps a store identifier to the credential bundle for that tenant.
type Resolver struct {
	active string
	known  map[string]config.StoreConfig
	order  []string
}

func NewResolver(cfg config.StoresConfig) *Resolver {
	r := &Resolver{
		active: cfg.Active,
		known:  make(map[string]config.StoreConfig, len(cfg.Known)),
	}
	for _, sc := range cfg.Known {
		if _, dup := r.known[sc.ID]; dup {
			continue
		}
		r.known[sc.ID] = sc
		r.order = append(r.order, sc.ID)
	}
	return r
}

// Resolve returns the full bundle for id, or for the active store when id is empty.
// No partial bundle is ever returned.
func (r *Resolver) Resolve(id string) (*domain.StoreCredentials, error) {
	if id == "" {
		id = r.active
	}
	sc, ok := r.known[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownStore, id)
	}

	prefix := "stores." + sc.ID + "."
	required := []struct {
		field string
		value string
	}{
		{"shopify_domain", sc.ShopifyDomain},
		{"shopify_token", sc.ShopifyToken},
		{"meta_ad_account_id", sc.MetaAdAccountID},
		{"meta_access_token", sc.MetaAccessToken},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, &domain.ConfigError{Field: prefix + f.field}
		}
	}

	return &domain.StoreCredentials{
		StoreID: sc.ID,
		Name:    sc.Name,
		Shopify: domain.ShopifyCredentials{
			Domain:      sc.ShopifyDomain,
			AccessToken: sc.ShopifyToken,
		},
		Meta: domain.MetaCredentials{
			AdAccountID: sc.MetaAdAccountID,
			AccessToken: sc.MetaAccessToken,
		},
	}, nil
}

// Configured probes every known store in declaration order and skips
// the ones that do not resolve.
func (r *Resolver) Configured() []domain.StoreCredentials {
	out := make([]domain.StoreCredentials, 0, len(r.order))
	for _, id := range r.order {
		if r.known[id].ShopifyDomain == "" {
			continue
		}
		creds, err := r.Resolve(id)
		if err != nil {
			continue
		}
		out = append(out, *creds)
	}
	return out
}
