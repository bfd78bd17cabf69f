// Package metrics provides centralized Prometheus metrics registry for the prediction engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	GamesProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "games_processed_total",
		Help:      "Total number of final game results processed",
	})
	GamesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "games_skipped_total",
		Help:      "Total number of scoreboard entries skipped as non-final or malformed",
	})
	PredictionsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "predictions_generated_total",
		Help:      "Total number of game predictions generated",
	})
	StateSavesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "state_saves_total",
		Help:      "Total number of engine state saves",
	})
	StateBackupRestoresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "state_backup_restores_total",
		Help:      "Total number of state restores from backup",
	})
	SeasonRolloversTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "courtside",
		Name:      "season_rollovers_total",
		Help:      "Total number of season rollovers applied",
	})
)

// Gauge metrics
var (
	TeamsRated = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "teams_rated",
		Help:      "Number of teams currently carrying a rating",
	})
	LastProcessedTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "last_processed_timestamp_seconds",
		Help:      "Unix timestamp of the most recently processed game date",
	})
	PendingDays = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "pending_days",
		Help:      "Number of completed days not yet folded into the state",
	})
	RatingSpread = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "courtside",
		Name:      "rating_spread",
		Help:      "Difference between the highest and lowest team rating",
	})
)

// Histogram metrics
var (
	UpdateRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "update_run_duration_seconds",
		Help:      "Duration of update runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	SlateScoringDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "slate_scoring_duration_seconds",
		Help:      "Duration of slate scoring passes in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	EloShiftPoints = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "courtside",
		Name:      "elo_shift_points",
		Help:      "Absolute rating points exchanged per processed game",
		Buckets:   []float64{1, 2, 4, 6, 8, 10, 12, 16, 20},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(GamesProcessedTotal)
		registry.MustRegister(GamesSkippedTotal)
		registry.MustRegister(PredictionsGeneratedTotal)
		registry.MustRegister(StateSavesTotal)
		registry.MustRegister(StateBackupRestoresTotal)
		registry.MustRegister(SeasonRolloversTotal)

		// Register gauge metrics
		registry.MustRegister(TeamsRated)
		registry.MustRegister(LastProcessedTimestamp)
		registry.MustRegister(PendingDays)
		registry.MustRegister(RatingSpread)

		// Register histogram metrics
		registry.MustRegister(UpdateRunDuration)
		registry.MustRegister(SlateScoringDuration)
		registry.MustRegister(EloShiftPoints)

		// Register prediction metrics
		registry.MustRegister(PredictionTiersTotal)
		registry.MustRegister(MarketComparisonsTotal)
		registry.MustRegister(PredictionConfidenceScore)
		registry.MustRegister(ModelVersionInfo)

		// Register feed metrics
		registry.MustRegister(FeedRequestsTotal)
		registry.MustRegister(FeedRequestDuration)
		registry.MustRegister(OddsRequestsRemaining)
		registry.MustRegister(OddsRequestsUsed)

		// Register archive metrics
		registry.MustRegister(ArchiveWritesTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordGameProcessed records a processed final result.
func RecordGameProcessed() {
	GamesProcessedTotal.Inc()
}

// RecordGameSkipped records a skipped scoreboard entry.
func RecordGameSkipped() {
	GamesSkippedTotal.Inc()
}

// RecordPredictionGenerated records a generated prediction.
func RecordPredictionGenerated() {
	PredictionsGeneratedTotal.Inc()
}

// RecordStateSave records an engine state save.
func RecordStateSave() {
	StateSavesTotal.Inc()
}

// RecordBackupRestore records a restore from backup.
func RecordBackupRestore() {
	StateBackupRestoresTotal.Inc()
}

// RecordSeasonRollover records a season rollover.
func RecordSeasonRollover() {
	SeasonRolloversTotal.Inc()
}

// RecordUpdateRunDuration records the duration of an update run.
func RecordUpdateRunDuration(durationSeconds float64) {
	UpdateRunDuration.Observe(durationSeconds)
}

// RecordSlateScoringDuration records the duration of a slate scoring pass.
func RecordSlateScoringDuration(durationSeconds float64) {
	SlateScoringDuration.Observe(durationSeconds)
}

// RecordEloShift records the rating points exchanged by a processed game.
func RecordEloShift(points float64) {
	if points < 0 {
		points = -points
	}
	EloShiftPoints.Observe(points)
}

// UpdateTeamsRated updates the rated teams gauge.
func UpdateTeamsRated(count float64) {
	TeamsRated.Set(count)
}

// UpdateLastProcessedTimestamp updates the last processed date gauge.
func UpdateLastProcessedTimestamp(unixSeconds float64) {
	LastProcessedTimestamp.Set(unixSeconds)
}

// UpdatePendingDays updates the pending days gauge.
func UpdatePendingDays(days float64) {
	PendingDays.Set(days)
}

// UpdateRatingSpread updates the rating spread gauge.
func UpdateRatingSpread(spread float64) {
	RatingSpread.Set(spread)
}
