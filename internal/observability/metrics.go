// Package observability provides metrics and tracing.
package observability

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageCacheEvents counts page cache lookups by backend and outcome (hit, miss, error, bypass).
	PageCacheEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_page_cache_events_total",
		Help: "Total number of page cache events by backend and outcome",
	}, []string{"backend", "outcome"})

	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// FollowCommands counts follow and unfollow commands by result.
	FollowCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_follow_commands_total",
		Help: "Total number of follow commands by action and result",
	}, []string{"action", "result"})

	// PostsCreated counts successfully created posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_posts_created_total",
		Help: "Total number of posts created",
	})

	// RateLimited counts requests rejected by the per-route rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_rate_limited_total",
		Help: "Total number of requests rejected by rate limiting, by resource",
	}, []string{"resource"})

	// PageRenderLatency records how long cached page renders take.
	PageRenderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_page_render_seconds",
		Help:    "Page render latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"page"})
)

// TrackRender returns a function that records render latency when called (e.g. defer).
func TrackRender(page string) func() {
	start := time.Now()
	return func() {
		PageRenderLatency.WithLabelValues(page).Observe(time.Since(start).Seconds())
	}
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the HTTP metrics middleware for the service. The
// collectors live in the default registry, so they are built once per process.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}
