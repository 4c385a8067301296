package httpapi

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mers/internal/domain"
	"mers/internal/provider/shopify"
	"mers/internal/service"
)

const maxWebhookBody = 5 << 20

// webhook reads the raw body before anything else; the signature covers the exact bytes.
func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "provider") != string(domain.ProviderShopify) {
		s.writeErr(w, r, domain.ErrUnsupportedProvider)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	err = s.Webhooks.Handle(r.Context(), service.Delivery{
		Body:       body,
		Signature:  r.Header.Get(shopify.HeaderHMAC),
		Topic:      r.Header.Get(shopify.HeaderTopic),
		ShopDomain: r.Header.Get(shopify.HeaderShopDomain),
	})
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{OK: true})
}
