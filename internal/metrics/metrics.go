package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels
const (
	ResultSuccess       = "success"
	ResultInvalid       = "invalid"
	ResultRateLimited   = "rate_limited"
	ResultDeliveryError = "delivery_failed"
	ResultStorageError  = "storage_unavailable"
	ResultIssuanceError = "issuance_failed"
)

// Metrics holds the service collectors on a private registry. A nil
// *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	codesSent        *prometheus.CounterVec
	redemptions      *prometheus.CounterVec
	sessionsIssued   *prometheus.CounterVec
	deliveryDuration prometheus.Histogram
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		codesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_codes_sent_total",
			Help: "Verification code send attempts by result",
		}, []string{"result"}),
		redemptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_redemptions_total",
			Help: "Verification code redemptions by result",
		}, []string{"result"}),
		sessionsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "otp_sessions_issued_total",
			Help: "Sessions issued, split by whether the identity was new",
		}, []string{"new_user"}),
		deliveryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "otp_sms_delivery_duration_seconds",
			Help:    "Latency of SMS delivery calls",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) CodeSent(result string) {
	if m == nil {
		return
	}
	m.codesSent.WithLabelValues(result).Inc()
}

func (m *Metrics) Redemption(result string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionIssued(newUser bool) {
	if m == nil {
		return
	}
	label := "false"
	if newUser {
		label = "true"
	}
	m.sessionsIssued.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveDelivery(d time.Duration) {
	if m == nil {
		return
	}
	m.deliveryDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry exposes the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
