package httpapi

import (
	"net/http"
)

// syncShopify runs orders and products sync for the caller's store. ?store=
// swaps the persisted credentials for a configured store's bundle.
func (s *Server) syncShopify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store, err := s.Setup.CallerStore(ctx)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	creds := store.Credentials()
	if id := r.URL.Query().Get("store"); id != "" {
		bundle, err := s.Resolver.Resolve(id)
		if err != nil {
			s.writeErr(w, r, err)
			return
		}
		creds = bundle.Shopify
	}

	res, err := s.Syncer.SyncStore(ctx, store.ID, creds)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]int{
		"orders":   res.Orders,
		"products": res.Products,
	})
}
