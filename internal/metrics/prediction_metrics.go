// Package metrics defines prediction-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prediction-specific counter vectors
var (
	PredictionTiersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "prediction_tiers_total",
		Help:      "Total number of predictions by confidence tier",
	}, []string{"tier"})

	MarketComparisonsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "market_comparisons_total",
		Help:      "Total number of model-versus-market comparisons by agreement",
	}, []string{"agreement"})
)

// Prediction-specific histogram vectors
var (
	PredictionConfidenceScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "prediction_confidence_score",
		Help:      "Confidence scores for generated predictions",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	}, []string{"tier"})
)

// Prediction-specific gauge vectors
var (
	ModelVersionInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "model_version_info",
		Help:      "Classifier model version currently in use, value is always 1",
	}, []string{"model_version"})
)

// RecordPredictionTier records a prediction with its confidence score.
func RecordPredictionTier(tier string, confidence float64) {
	PredictionTiersTotal.WithLabelValues(tier).Inc()
	PredictionConfidenceScore.WithLabelValues(tier).Observe(confidence)
}

// RecordMarketComparison records a model-versus-market comparison.
// agreement should be one of: "with_market", "against_market", "no_market"
func RecordMarketComparison(agreement string) {
	MarketComparisonsTotal.WithLabelValues(agreement).Inc()
}

// UpdateModelVersion marks the classifier model version in use.
func UpdateModelVersion(version string) {
	ModelVersionInfo.Reset()
	ModelVersionInfo.WithLabelValues(version).Set(1)
}
