package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Pipeline metrics
	ProposalsGenerated *prometheus.CounterVec // labeled by source: model|template
	GenerationFailures prometheus.Counter
	UpstreamDuration   prometheus.Histogram

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Discovery metrics
	EventsDiscovered prometheus.Counter
	FeedFetchErrors  prometheus.Counter
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	// Use singleton pattern to avoid duplicate registration in tests
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	// Return existing collector if already created
	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	proposalsGenerated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposals_generated_total",
			Help:      "Total number of proposals generated, by source",
		},
		[]string{"source"},
	)

	generationFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_failures_total",
			Help:      "Total number of upstream generation failures recovered by fallback",
		},
	)

	upstreamDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_completion_duration_seconds",
			Help:      "Upstream completion call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
	)

	eventsDiscovered := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_discovered_total",
			Help:      "Total number of events fetched from listing feeds",
		},
	)

	feedFetchErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_errors_total",
			Help:      "Total number of listing feed fetch failures",
		},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		proposalsGenerated,
		generationFailures,
		upstreamDuration,
		cacheHits,
		cacheMisses,
		eventsDiscovered,
		feedFetchErrors,
	)

	globalCollector = &Collector{
		registry:           registry,
		HTTPRequests:       httpRequests,
		HTTPDuration:       httpDuration,
		ProposalsGenerated: proposalsGenerated,
		GenerationFailures: generationFailures,
		UpstreamDuration:   upstreamDuration,
		CacheHits:          cacheHits,
		CacheMisses:        cacheMisses,
		EventsDiscovered:   eventsDiscovered,
		FeedFetchErrors:    feedFetchErrors,
	}

	return globalCollector
}

// Handler returns an HTTP handler serving this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ResetForTesting resets the global collector for testing purposes
func ResetForTesting() {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	globalCollector = nil
}
