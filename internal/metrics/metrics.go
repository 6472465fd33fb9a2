package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	ItemsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_items_deleted_total",
			Help: "Total gallery items deleted",
		},
	)

	ResolverAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_resolver_attempts_total",
			Help: "Total file resolution attempts per provider",
		},
		[]string{"provider", "outcome"}, // outcome: "success" or "failure"
	)

	ResolverFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_resolver_fallbacks_total",
			Help: "Total resolutions that fell through to a mirror provider",
		},
	)

	ResolverExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_resolver_exhausted_total",
			Help: "Total resolutions that failed on every provider",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	RedisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_redis_latency_seconds",
			Help:    "Redis operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
	)

	PostgresLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_postgres_latency_seconds",
			Help:    "PostgreSQL query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1},
		},
	)
)
