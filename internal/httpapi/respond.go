package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"mers/internal/domain"
	"mers/internal/provider"
)

const msgNoStore = "No store found. Initialize first."

type envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{OK: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Error: message})
}

// writeErr maps err onto a status and the failure envelope. Server-side
// failures are logged; client errors are not.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, message := classify(err)

	var perr *provider.Error
	if errors.As(err, &perr) {
		if s.Errors != nil {
			s.Errors.ObserveProviderError(perr.Provider, string(perr.Kind))
		}
		if perr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(perr.RetryAfter.Seconds()))))
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeError(w, status, message)
}

func classify(err error) (int, string) {
	var cfgErr *domain.ConfigError
	switch {
	case errors.Is(err, domain.ErrNoStore):
		return http.StatusBadRequest, msgNoStore
	case errors.As(err, &cfgErr),
		errors.Is(err, domain.ErrMissingHeaders),
		errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrUnknownStore):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrStoreNotFound),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUnsupportedProvider):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
