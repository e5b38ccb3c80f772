package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamecollection_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	CatalogQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamecollection_catalog_queries_total",
			Help: "Catalog listing queries by sort key",
		},
		[]string{"sort"},
	)

	Recommendations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamecollection_recommendations_returned",
			Help:    "Number of games returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10},
		},
	)

	MembershipOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamecollection_membership_operations_total",
			Help: "Membership mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	ActivityDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamecollection_activity_feed_degraded_total",
			Help: "Activity feeds returned empty because a source failed",
		},
	)
)

// RecordMembership counts a membership operation outcome.
func RecordMembership(operation, result string) {
	MembershipOperations.WithLabelValues(operation, result).Inc()
}

// GinMiddleware observes request latency keyed by the matched route pattern.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
