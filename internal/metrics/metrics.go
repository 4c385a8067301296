package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mers/internal/domain"
)

const namespace = "mers"

// knownTopics bounds the webhook topic label; anything else is reported as "other".
var knownTopics = map[string]struct{}{
	"orders/create":   {},
	"orders/updated":  {},
	"orders/paid":     {},
	"products/create": {},
	"products/update": {},
	"products/delete": {},
}

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	SyncRunsTotal    *prometheus.CounterVec
	SyncRecordsTotal *prometheus.CounterVec
	SyncDuration     *prometheus.HistogramVec
	WebhooksTotal    *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SyncRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Sync runs by type and final status.",
			},
			[]string{"type", "status"},
		),

		SyncRecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_records_total",
				Help:      "Records upserted by sync runs.",
			},
			[]string{"type"},
		),

		SyncDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Wall time of sync runs.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"type"},
		),

		WebhooksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhooks_total",
				Help:      "Webhook deliveries by topic and outcome.",
			},
			[]string{"topic", "outcome"},
		),

		ProviderErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Upstream API errors by provider and kind.",
			},
			[]string{"provider", "kind"},
		),
	}
}

func (m *Metrics) ObserveSync(syncType domain.SyncType, status domain.SyncStatus, records int, took time.Duration) {
	m.SyncRunsTotal.WithLabelValues(string(syncType), string(status)).Inc()
	m.SyncRecordsTotal.WithLabelValues(string(syncType)).Add(float64(records))
	m.SyncDuration.WithLabelValues(string(syncType)).Observe(took.Seconds())
}

func (m *Metrics) ObserveWebhook(topic, outcome string) {
	if _, ok := knownTopics[topic]; !ok {
		topic = "other"
	}
	m.WebhooksTotal.WithLabelValues(topic, outcome).Inc()
}

func (m *Metrics) ObserveProviderError(provider, kind string) {
	m.ProviderErrors.WithLabelValues(provider, kind).Inc()
}

// Handler serves the private registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
