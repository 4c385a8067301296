package httpapi

import (
	"net/http"
	"time"

	"mers/internal/domain"
)

func (s *Server) initialize(w http.ResponseWriter, r *http.Request) {
	res, err := s.Setup.Initialize(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	message := "Store initialized"
	if !res.Created {
		message = "Store already initialized"
	}
	writeData(w, http.StatusOK, map[string]any{
		"message": message,
		"store":   res.Store,
	})
}

type integrationView struct {
	Provider domain.Provider          `json:"provider"`
	Status   domain.IntegrationStatus `json:"status"`
	LastSync *time.Time               `json:"lastSync"`
}

func integrationViews(in []domain.Integration) []integrationView {
	out := make([]integrationView, 0, len(in))
	for _, i := range in {
		out = append(out, integrationView{Provider: i.Provider, Status: i.Status, LastSync: i.LastSyncAt})
	}
	return out
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	st, err := s.Setup.Status(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	if st.Store == nil {
		writeData(w, http.StatusOK, map[string]any{
			"initialized": false,
			"message":     "No store found. Call POST /init to initialize.",
		})
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"initialized": true,
		"store": map[string]string{
			"id":     st.Store.ID,
			"name":   st.Store.Name,
			"domain": st.Store.ShopifyDomain,
		},
		"database": map[string]int{
			"orders":   st.Orders,
			"products": st.Products,
		},
		"lastSync": map[string]*time.Time{
			"orders":   st.LastOrders,
			"products": st.LastProducts,
		},
		"integrations": integrationViews(st.Integrations),
	})
}

func (s *Server) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := s.Setup.ListStores(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if stores == nil {
		stores = []domain.Store{}
	}
	writeData(w, http.StatusOK, stores)
}

func (s *Server) configuredStores(w http.ResponseWriter, _ *http.Request) {
	type configured struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		ShopifyDomain string `json:"shopifyDomain"`
	}

	creds := s.Resolver.Configured()
	out := make([]configured, 0, len(creds))
	for _, c := range creds {
		out = append(out, configured{ID: c.StoreID, Name: c.Name, ShopifyDomain: c.Shopify.Domain})
	}
	writeData(w, http.StatusOK, out)
}

type integrationDetail struct {
	integrationView
	Metadata domain.JSON `json:"metadata"`
}

func (s *Server) integrations(w http.ResponseWriter, r *http.Request) {
	store, err := s.Setup.StoreWithIntegrations(r.Context(), r.URL.Query().Get("store"))
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	out := make([]integrationDetail, 0, len(store.Integrations))
	for _, i := range store.Integrations {
		out = append(out, integrationDetail{
			integrationView: integrationView{Provider: i.Provider, Status: i.Status, LastSync: i.LastSyncAt},
			Metadata:        i.Metadata,
		})
	}
	writeData(w, http.StatusOK, map[string]any{
		"store": map[string]string{
			"name":          store.Name,
			"shopifyDomain": store.ShopifyDomain,
		},
		"integrations": out,
	})
}
