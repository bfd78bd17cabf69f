// Package classifier provides Prometheus metrics for classifier operations.
package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal tracks total scored matchups
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_predictions_total",
			Help: "Total number of classifier predictions made",
		},
		[]string{"source", "cache_hit"},
	)

	// RequestLatency tracks classifier request latency
	RequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_request_latency_seconds",
			Help:    "Classifier request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// RequestErrorsTotal tracks classifier request errors
	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_request_errors_total",
			Help: "Total number of classifier request errors",
		},
		[]string{"endpoint", "error_type"},
	)

	// CacheHitRatio tracks prediction cache hit ratio
	CacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classifier_cache_hit_ratio",
			Help: "Classifier prediction cache hit ratio",
		},
	)
)
