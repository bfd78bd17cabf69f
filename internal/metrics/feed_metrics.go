// Package metrics defines data feed metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Feed counter vectors
var (
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "feed_requests_total",
		Help:      "Total number of feed requests by source and status",
	}, []string{"source", "status"})
)

// Feed histogram vectors
var (
	FeedRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "feed_request_duration_seconds",
		Help:      "Duration of feed requests by source in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// Odds API quota gauges
var (
	OddsRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "odds_api_requests_remaining",
		Help:      "Remaining request quota reported by the odds feed",
	})
	OddsRequestsUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "odds_api_requests_used",
		Help:      "Used request quota reported by the odds feed",
	})
)

// RecordFeedRequest records a feed request outcome.
// source should be one of: "scoreboard", "injuries", "odds"
// status should be one of: "success", "error", "rate_limited"
func RecordFeedRequest(source, status string) {
	FeedRequestsTotal.WithLabelValues(source, status).Inc()
}

// ObserveFeedRequestDuration records the duration of a feed request.
func ObserveFeedRequestDuration(source string, durationSeconds float64) {
	FeedRequestDuration.WithLabelValues(source).Observe(durationSeconds)
}

// UpdateOddsQuota updates the odds feed quota gauges.
func UpdateOddsQuota(remaining, used float64) {
	OddsRequestsRemaining.Set(remaining)
	OddsRequestsUsed.Set(used)
}
