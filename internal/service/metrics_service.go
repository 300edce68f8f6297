package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SystemMetrics is a point-in-time summary served to the admin portal.
type SystemMetrics struct {
	CacheHitRatio             float64   `json:"cacheHitRatio"`
	CacheHits                 uint64    `json:"cacheHits"`
	CacheMisses               uint64    `json:"cacheMisses"`
	RequestsTotal             uint64    `json:"requestsTotal"`
	AverageRequestDurationMs  float64   `json:"averageRequestDurationMs"`
	QueryFetches              uint64    `json:"queryFetches"`
	QueryErrors               uint64    `json:"queryErrors"`
	Invalidations             uint64    `json:"invalidations"`
	Mutations                 uint64    `json:"mutations"`
	MutationFailures          uint64    `json:"mutationFailures"`
	UpstreamRequests          uint64    `json:"upstreamRequests"`
	AverageUpstreamDurationMs float64   `json:"averageUpstreamDurationMs"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheLatency     prometheus.Observer
	cacheWrite       prometheus.Observer
	cacheHitRatio    prometheus.Gauge
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	queryTotal       *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	invalidations    *prometheus.CounterVec
	mutationTotal    *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	upstreamDuration *prometheus.HistogramVec
	jobsTotal        *prometheus.CounterVec

	cacheHitCount         uint64
	cacheMissCount        uint64
	requestCount          uint64
	requestDurationTotal  uint64
	queryFetchCount       uint64
	queryErrorCount       uint64
	invalidationCount     uint64
	mutationCount         uint64
	mutationFailureCount  uint64
	upstreamCount         uint64
	upstreamDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for shared cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for shared cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of shared cache hits to total lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total shared cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total shared cache misses",
	})

	queryTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_requests_total",
		Help: "Query cache reads by resource and outcome",
	}, []string{"resource", "outcome"})

	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "query_duration_seconds",
		Help:    "Time to resolve a query read",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource"})

	invalidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "query_invalidations_total",
		Help: "Invalidated key prefixes by resource",
	}, []string{"resource"})

	mutationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mutations_total",
		Help: "Mutations by name and outcome",
	}, []string{"mutation", "outcome"})

	mutationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mutation_duration_seconds",
		Help:    "Mutation latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"mutation"})

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of calls to the LMS backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "resource", "status"})

	jobsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jobs_total",
		Help: "Background jobs by type and outcome",
	}, []string{"type", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		queryTotal, queryDuration, invalidations,
		mutationTotal, mutationDuration,
		upstreamDuration, jobsTotal, goroutines,
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheLatency:     cacheLatency,
		cacheWrite:       cacheWrite,
		cacheHitRatio:    cacheHitRatio,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		queryTotal:       queryTotal,
		queryDuration:    queryDuration,
		invalidations:    invalidations,
		mutationTotal:    mutationTotal,
		mutationDuration: mutationDuration,
		upstreamDuration: upstreamDuration,
		jobsTotal:        jobsTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveQuery records one query cache read.
func (m *MetricsService) ObserveQuery(resource, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.queryTotal.WithLabelValues(resource, outcome).Inc()
	m.queryDuration.WithLabelValues(resource).Observe(duration.Seconds())
	switch outcome {
	case "miss":
		atomic.AddUint64(&m.queryFetchCount, 1)
	case "error", "stale":
		atomic.AddUint64(&m.queryFetchCount, 1)
		atomic.AddUint64(&m.queryErrorCount, 1)
	}
}

// ObserveInvalidation counts an invalidated prefix.
func (m *MetricsService) ObserveInvalidation(resource string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(resource).Inc()
	atomic.AddUint64(&m.invalidationCount, 1)
}

// ObserveMutation records one mutation attempt.
func (m *MetricsService) ObserveMutation(name, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.mutationTotal.WithLabelValues(name, outcome).Inc()
	m.mutationDuration.WithLabelValues(name).Observe(duration.Seconds())
	atomic.AddUint64(&m.mutationCount, 1)
	if outcome != "success" {
		atomic.AddUint64(&m.mutationFailureCount, 1)
	}
}

// ObserveUpstream records a backend call. Paths are collapsed to their
// resource so entity ids do not explode label cardinality.
func (m *MetricsService) ObserveUpstream(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(method, upstreamResource(path), fmt.Sprintf("%d", status)).Observe(duration.Seconds())
	atomic.AddUint64(&m.upstreamCount, 1)
	atomic.AddUint64(&m.upstreamDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveJob counts a finished background job.
func (m *MetricsService) ObserveJob(jobType, outcome string) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(jobType, outcome).Inc()
}

func upstreamResource(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 2 {
		segments = segments[:2]
	}
	return "/" + strings.Join(segments, "/")
}

// Snapshot returns aggregated metrics suitable for the admin portal.
func (m *MetricsService) Snapshot() SystemMetrics {
	if m == nil {
		return SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)
	upstream := atomic.LoadUint64(&m.upstreamCount)
	upDuration := atomic.LoadUint64(&m.upstreamDurationTotal)

	var cacheRatio float64
	if totalLookups := hits + misses; totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	var avgUpstreamMs float64
	if upstream > 0 {
		avgUpstreamMs = float64(upDuration) / float64(upstream) / float64(time.Millisecond)
	}

	return SystemMetrics{
		CacheHitRatio:             cacheRatio,
		CacheHits:                 hits,
		CacheMisses:               misses,
		RequestsTotal:             requests,
		AverageRequestDurationMs:  avgRequestMs,
		QueryFetches:              atomic.LoadUint64(&m.queryFetchCount),
		QueryErrors:               atomic.LoadUint64(&m.queryErrorCount),
		Invalidations:             atomic.LoadUint64(&m.invalidationCount),
		Mutations:                 atomic.LoadUint64(&m.mutationCount),
		MutationFailures:          atomic.LoadUint64(&m.mutationFailureCount),
		UpstreamRequests:          upstream,
		AverageUpstreamDurationMs: avgUpstreamMs,
		Goroutines:                runtime.NumGoroutine(),
		GeneratedAt:               time.Now().UTC(),
	}
}
