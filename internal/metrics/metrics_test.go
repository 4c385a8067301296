package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mers/internal/domain"
)

func TestObserveSync(t *testing.T) {
	m := New()

	m.ObserveSync(domain.SyncOrders, domain.SyncCompleted, 503, 3*time.Second)
	m.ObserveSync(domain.SyncOrders, domain.SyncFailed, 250, time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRunsTotal.WithLabelValues("orders", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRunsTotal.WithLabelValues("orders", "failed")))
	assert.Equal(t, 753.0, testutil.ToFloat64(m.SyncRecordsTotal.WithLabelValues("orders")))
}

func TestObserveWebhook_BoundsTopics(t *testing.T) {
	m := New()

	m.ObserveWebhook("orders/paid", "applied")
	m.ObserveWebhook("customers/create", "applied")
	m.ObserveWebhook("app/uninstalled", "applied")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WebhooksTotal.WithLabelValues("orders/paid", "applied")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.WebhooksTotal.WithLabelValues("other", "applied")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveProviderError("shopify", "rate_limit")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `mers_provider_errors_total{kind="rate_limit",provider="shopify"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
