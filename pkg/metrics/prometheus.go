// Package metrics provides Prometheus metrics for the nitecap discovery core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring outcomes.
	venuesAccepted prometheus.Counter
	venuesRejected prometheus.Counter

	// Cache-aside behavior.
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheFallbacks prometheus.Counter

	// Outbound admission control.
	rateLimitDecisions *prometheus.CounterVec

	// Discovery query behavior.
	discoveryRequests  prometheus.Counter
	discoveryWidenings prometheus.Counter
	discoveryLatency   prometheus.Histogram

	// Store scale.
	venuesTracked prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nitecap",
		subsystem:        "discovery",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.venuesAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "venues_accepted_total",
		Help:      "Total number of candidates the scoring engine accepted",
	})

	m.venuesRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "venues_rejected_total",
		Help:      "Total number of candidates the scoring engine rejected",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of cache-aside lookups served from the backend",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of cache-aside lookups that invoked the loader",
	})

	m.cacheFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_fallbacks_total",
		Help:      "Total number of lookups that bypassed an unreachable cache backend",
	})

	m.rateLimitDecisions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "rate_limit_decisions_total",
			Help:      "Outbound call admissions and denials by provider",
		},
		[]string{"provider", "decision"},
	)

	m.discoveryRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "discovery_requests_total",
		Help:      "Total number of discovery queries served",
	})

	m.discoveryWidenings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "discovery_widenings_total",
		Help:      "Total number of fallback radius widenings performed",
	})

	m.discoveryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "discovery_latency_milliseconds",
		Help:      "Histogram of discovery query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.venuesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "venues_tracked",
		Help:      "Current number of venues in the store",
	})
}

// RecordVenueAccepted increments the accepted-candidates counter.
func RecordVenueAccepted() {
	globalManager.venuesAccepted.Inc()
}

// RecordVenueRejected increments the rejected-candidates counter.
func RecordVenueRejected() {
	globalManager.venuesRejected.Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheFallback increments the unreachable-backend fallback counter.
func RecordCacheFallback() {
	globalManager.cacheFallbacks.Inc()
}

// RecordRateLimitAllowed counts an admitted outbound call for a provider.
func RecordRateLimitAllowed(provider string) {
	globalManager.rateLimitDecisions.WithLabelValues(provider, "allowed").Inc()
}

// RecordRateLimitDenied counts a denied outbound call for a provider.
func RecordRateLimitDenied(provider string) {
	globalManager.rateLimitDecisions.WithLabelValues(provider, "denied").Inc()
}

// RecordDiscoveryRequest increments the discovery request counter.
func RecordDiscoveryRequest() {
	globalManager.discoveryRequests.Inc()
}

// RecordDiscoveryWidening increments the fallback widening counter.
func RecordDiscoveryWidening() {
	globalManager.discoveryWidenings.Inc()
}

// RecordDiscoveryLatency records discovery query latency in milliseconds.
func RecordDiscoveryLatency(latencyMs float64) {
	globalManager.discoveryLatency.Observe(latencyMs)
}

// UpdateVenuesTracked sets the current number of stored venues.
func UpdateVenuesTracked(count int) {
	globalManager.venuesTracked.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
