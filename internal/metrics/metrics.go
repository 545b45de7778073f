package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/brizzai/nylas-mail-backend/internal/requester"
	"github.com/brizzai/nylas-mail-backend/internal/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "nylas_backend"

// Metrics holds the backend's collectors on a dedicated registry
type Metrics struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	webhookDeltas    *prometheus.CounterVec
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Provider API calls, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_duration_seconds",
			Help:      "Provider API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		webhookDeltas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deltas_total",
			Help:      "Webhook deltas received, by trigger and whether a subscriber got them.",
		}, []string{"trigger", "delivered"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.providerCalls,
		m.providerDuration,
		m.webhookDeltas,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests served by next under route
func (m *Metrics) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

// ObserveProviderCall records a provider API call
func (m *Metrics) ObserveProviderCall(operation string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.providerCalls.WithLabelValues(operation, outcome).Inc()
	m.providerDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveWebhookDelta records a published webhook delta
func (m *Metrics) ObserveWebhookDelta(trigger string, delivered int) {
	m.webhookDeltas.WithLabelValues(trigger, strconv.FormatBool(delivered > 0)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func newProviderObserver(m *Metrics) requester.Observer {
	return m
}

func newDeltaObserver(m *Metrics) webhook.DeltaObserver {
	return m
}

// Module provides the collectors as the provider call and webhook delta
// observers
var Module = fx.Module("metrics",
	fx.Provide(
		New,
		newProviderObserver,
		newDeltaObserver,
	),
)
