// Package logger provides update-pipeline logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for state update runs.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogUpdateRunStarted logs the start of an update run.
func (pl *PipelineLogger) LogUpdateRunStarted(fromDate, toDate string, pendingDays int) {
	pl.WithFields(logrus.Fields{
		"from_date":    fromDate,
		"to_date":      toDate,
		"pending_days": pendingDays,
	}).Info("Update run started")
}

// LogDateProcessed logs the completion of a single date within an update run.
func (pl *PipelineLogger) LogDateProcessed(gameDate string, gamesProcessed, gamesSkipped int) {
	pl.WithFields(logrus.Fields{
		"game_date":       gameDate,
		"games_processed": gamesProcessed,
		"games_skipped":   gamesSkipped,
	}).Info("Date processed")
}

// LogGameProcessed logs a single processed final.
func (pl *PipelineLogger) LogGameProcessed(gameID string, homeTeam, awayTeam string, homeScore, awayScore int, eloShift float64) {
	pl.WithFields(logrus.Fields{
		"game_id":    gameID,
		"home_team":  homeTeam,
		"away_team":  awayTeam,
		"home_score": homeScore,
		"away_score": awayScore,
		"elo_shift":  eloShift,
	}).Debug("Game result processed")
}

// LogStateSaved logs a successful state save.
func (pl *PipelineLogger) LogStateSaved(path string, teamsRated int, lastProcessed string, backupCreated bool) {
	pl.WithFields(logrus.Fields{
		"path":           path,
		"teams_rated":    teamsRated,
		"last_processed": lastProcessed,
		"backup_created": backupCreated,
	}).Info("State saved")
}

// LogStateRestored logs a restore from backup.
func (pl *PipelineLogger) LogStateRestored(path, backupPath string) {
	pl.WithFields(logrus.Fields{
		"path":        path,
		"backup_path": backupPath,
	}).Warn("State restored from backup")
}

// LogSeasonRollover logs a season rollover event.
func (pl *PipelineLogger) LogSeasonRollover(season string, teamsRegressed int, keepRatio float64) {
	pl.WithFields(logrus.Fields{
		"season":          season,
		"teams_regressed": teamsRegressed,
		"keep_ratio":      keepRatio,
	}).Info("Season rollover applied")
}

// LogUpdateRunCompleted logs the end of an update run.
func (pl *PipelineLogger) LogUpdateRunCompleted(datesProcessed, gamesProcessed, gamesSkipped int, durationSeconds float64) {
	pl.WithFields(logrus.Fields{
		"dates_processed":  datesProcessed,
		"games_processed":  gamesProcessed,
		"games_skipped":    gamesSkipped,
		"duration_seconds": durationSeconds,
	}).Info("Update run completed")
}

// LogUpdateRunFailed logs an aborted update run.
func (pl *PipelineLogger) LogUpdateRunFailed(gameDate, reason string) {
	pl.WithFields(logrus.Fields{
		"game_date": gameDate,
		"reason":    reason,
	}).Error("Update run failed")
}
