package inspect

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics provides Prometheus-compatible metrics collection for
// request inspection in production environments.
//
// Metrics exposed (all namespaced with "gatewall_"):
//
// 1. requests_total (counter): Inspected requests by outcome.
// Labels: verdict (accept/reject), kind (empty, sql_injection_suspected,
// xss_suspected).
// Use: rejection-rate dashboards and alerting on kind skew.
//
// 2. inspect_latency_ms (histogram): Time spent in the pattern scan.
// Buckets: [0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50].
// Use: P50/P95/P99 scan latency; the scan is linear in body size.
//
// 3. body_bytes (histogram): Size of inspected bodies.
// Buckets: 64B to 1MiB, exponential.
// Use: sizing the transport body cap.
//
// 4. inflight_requests (gauge): Requests currently being handled by the
// transport. Maintained by the server, not the validator.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := inspect.NewPrometheusMetrics(registry)
//	v, err := inspect.New(inspect.WithMetrics(metrics))
//
//	// Expose via HTTP for Prometheus scraping:
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// Thread-safe: all methods delegate to thread-safe Prometheus collectors.
type PrometheusMetrics struct {
	requests       *prometheus.CounterVec
	inspectLatency prometheus.Histogram
	bodyBytes      prometheus.Histogram
	inflight       prometheus.Gauge

	// Registry holds all registered metrics.
	registry prometheus.Registerer

	// Mutex protects the enabled flag.
	mu sync.RWMutex

	// enabled controls whether metrics are recorded.
	enabled bool
}

// NewPrometheusMetrics creates and registers all gateway metrics with the
// provided Prometheus registry.
//
// Parameters:
//   - registry: Prometheus registry to register metrics with (nil falls back
//     to prometheus.DefaultRegisterer).
//
// Returns a fully initialized metrics collector. All metrics are registered
// with namespace "gatewall".
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	pm := &PrometheusMetrics{
		registry: registry,
		enabled:  true,
	}

	pm.requests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatewall",
		Name:      "requests_total",
		Help:      "Inspected requests by verdict and rejection kind",
	}, []string{"verdict", "kind"})

	pm.inspectLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gatewall",
		Name:      "inspect_latency_ms",
		Help:      "Pattern scan duration in milliseconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})

	pm.bodyBytes = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gatewall",
		Name:      "body_bytes",
		Help:      "Size of inspected request bodies in bytes",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8), // 64B .. 1MiB
	})

	pm.inflight = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatewall",
		Name:      "inflight_requests",
		Help:      "Requests currently being handled by the transport",
	})

	return pm
}

// RecordDecision records one inspection outcome: the requests_total counter,
// the scan latency histogram, and the body size histogram.
//
// Called by the Validator for every Inspect; safe for concurrent use.
func (pm *PrometheusMetrics) RecordDecision(d Decision, bodyBytes int, elapsed time.Duration) {
	if !pm.recording() {
		return
	}

	pm.requests.WithLabelValues(d.Verdict.String(), string(d.Kind)).Inc()
	pm.inspectLatency.Observe(float64(elapsed.Nanoseconds()) / 1e6)
	pm.bodyBytes.Observe(float64(bodyBytes))
}

// IncInflight increments the inflight_requests gauge. Called by the server
// when a request enters the handler chain.
func (pm *PrometheusMetrics) IncInflight() {
	if !pm.recording() {
		return
	}
	pm.inflight.Inc()
}

// DecInflight decrements the inflight_requests gauge. Called by the server
// when a request completes.
func (pm *PrometheusMetrics) DecInflight() {
	if !pm.recording() {
		return
	}
	pm.inflight.Dec()
}

// Disable temporarily disables metric recording (useful for testing).
func (pm *PrometheusMetrics) Disable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = false
}

// Enable re-enables metric recording after Disable().
func (pm *PrometheusMetrics) Enable() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.enabled = true
}

func (pm *PrometheusMetrics) recording() bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.enabled
}
