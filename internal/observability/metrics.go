package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snapgram_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// GraphOperations counts follow/unfollow calls by outcome code.
	GraphOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_graph_operations_total",
		Help: "Follow graph mutations by operation and result",
	}, []string{"operation", "result"})

	// GraphRetries counts internal retries after a detected write conflict.
	GraphRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_graph_conflict_retries_total",
		Help: "Internal retries of follow graph mutations after a write conflict",
	}, []string{"operation"})

	// FeedLatency records home feed aggregation latency.
	FeedLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapgram_feed_aggregation_seconds",
		Help:    "Home feed aggregation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// FeedEntries records how many entries each home feed returned.
	FeedEntries = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "snapgram_feed_entries",
		Help:    "Number of entries returned per home feed",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})

	// StoryEvents counts story lifecycle events by kind and result.
	StoryEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snapgram_story_events_total",
		Help: "Story publish, view and reaction events by result",
	}, []string{"event", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
