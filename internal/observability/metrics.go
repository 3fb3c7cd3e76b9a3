// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EngagementToggles counts like/unlike calls by target type and outcome.
	EngagementToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_engagement_toggles_total",
		Help: "Total like and unlike operations by target type and outcome",
	}, []string{"target", "outcome"})

	// CascadeDeletes counts rows removed by comment and post cascades.
	CascadeDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_cascade_deleted_total",
		Help: "Total rows removed by cascade deletes by root kind and removed kind",
	}, []string{"root", "removed"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_cache_lookups_total",
		Help: "Total cache-aside lookups by result",
	}, []string{"result"})

	// ServiceLatency records service operation latency.
	ServiceLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "socialfeed_service_latency_seconds",
		Help:    "Service operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "operation"})
)

// TrackOperation returns a function that records latency when called (e.g. defer).
func TrackOperation(service, operation string) func() {
	start := time.Now()
	return func() {
		ServiceLatency.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
	}
}
