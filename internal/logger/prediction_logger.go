// Package logger provides prediction-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for slate predictions.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogSlateScored logs a completed slate scoring pass.
func (pr *PredictionLogger) LogSlateScored(gameDate string, games, cacheHits int, durationSeconds float64) {
	pr.WithFields(logrus.Fields{
		"game_date":        gameDate,
		"games":            games,
		"cache_hits":       cacheHits,
		"duration_seconds": durationSeconds,
	}).Info("Slate scored")
}

// LogPrediction logs a single game prediction.
func (pr *PredictionLogger) LogPrediction(gameID, homeTeam, awayTeam string, homeWinProbability float64, tier string, confidence float64) {
	pr.WithFields(logrus.Fields{
		"game_id":       gameID,
		"home_team":     homeTeam,
		"away_team":     awayTeam,
		"home_win_prob": homeWinProbability,
		"tier":          tier,
		"confidence":    confidence,
	}).Info("Prediction generated")
}

// LogMarketComparison logs how a model probability sits against the market.
func (pr *PredictionLogger) LogMarketComparison(gameID string, modelProbability, marketProbability, edge float64, agreement string) {
	pr.WithFields(logrus.Fields{
		"game_id":     gameID,
		"model_prob":  modelProbability,
		"market_prob": marketProbability,
		"edge":        edge,
		"agreement":   agreement,
	}).Info("Market comparison")
}

// LogLowConfidence logs a prediction flagged by the confidence scorer.
func (pr *PredictionLogger) LogLowConfidence(gameID string, confidence float64, notes []string) {
	pr.WithFields(logrus.Fields{
		"game_id":    gameID,
		"confidence": confidence,
		"notes":      notes,
	}).Warn("Low confidence prediction")
}

// LogPredictionError logs a prediction failure for a single game.
func (pr *PredictionLogger) LogPredictionError(gameID, reason string) {
	pr.WithFields(logrus.Fields{
		"game_id": gameID,
		"reason":  reason,
	}).Error("Prediction failed")
}
