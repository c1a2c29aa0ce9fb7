package providers

import (
	"ess/internal/structures"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncRemoteCalls(resource string, status int)
	ObserveRemoteDuration(resource string, duration time.Duration)
	IncStoreOps(op string, result string)
	SetSessionState(state string)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	remoteCalls     *prometheus.CounterVec
	remoteDuration  *prometheus.HistogramVec
	storeOps        *prometheus.CounterVec
	sessionState    *prometheus.GaugeVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncRemoteCalls counts calls to the remote backend. A zero status means the
// call never produced an HTTP response.
func (m *MetricsProvider) IncRemoteCalls(resource string, status int) {
	bucket := "network_error"
	if status > 0 {
		bucket = httpStatusBucket(status)
	}
	m.remoteCalls.WithLabelValues(resource, bucket).Inc()
}

func (m *MetricsProvider) ObserveRemoteDuration(resource string, duration time.Duration) {
	m.remoteDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncStoreOps(op string, result string) {
	m.storeOps.WithLabelValues(op, result).Inc()
}

func (m *MetricsProvider) SetSessionState(state string) {
	m.sessionState.Reset()
	m.sessionState.WithLabelValues(state).Set(1)
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ess_requests_total",
			Help: "Total number of local API requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ess_request_duration_seconds",
			Help:    "Local API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		remoteCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ess_remote_calls_total",
			Help: "Total number of calls made to the remote backend",
		}, []string{"resource", "status"}),

		remoteDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ess_remote_call_duration_seconds",
			Help:    "Remote backend call duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource"}),

		storeOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ess_store_operations_total",
			Help: "Credential store operations by kind and result",
		}, []string{"op", "result"}),

		sessionState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ess_session_state",
			Help: "Current session state (1 for the active state)",
		}, []string{"state"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncRemoteCalls(_ string, _ int)                   {}
func (n *noopMetrics) ObserveRemoteDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncStoreOps(_ string, _ string)                   {}
func (n *noopMetrics) SetSessionState(_ string)                         {}
