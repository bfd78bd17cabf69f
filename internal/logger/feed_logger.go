// Package logger provides data feed logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// FeedLogger provides dedicated logging for external data feeds.
type FeedLogger struct {
	*logrus.Entry
}

// NewFeedLogger creates a new feed logger.
func NewFeedLogger(baseLogger *logrus.Logger) *FeedLogger {
	return &FeedLogger{
		Entry: baseLogger.WithField("component", "feeds"),
	}
}

// LogFetchCompleted logs a successful feed fetch.
func (fl *FeedLogger) LogFetchCompleted(source string, records int, durationMs float64) {
	fl.WithFields(logrus.Fields{
		"source":      source,
		"records":     records,
		"duration_ms": durationMs,
	}).Info("Feed fetch completed")
}

// LogFetchFailed logs a feed fetch failure after retries were exhausted.
func (fl *FeedLogger) LogFetchFailed(source, reason string) {
	fl.WithFields(logrus.Fields{
		"source": source,
		"reason": reason,
	}).Error("Feed fetch failed")
}

// LogQuota logs remaining API quota reported by a feed.
func (fl *FeedLogger) LogQuota(source string, remaining, used int) {
	fl.WithFields(logrus.Fields{
		"source":    source,
		"remaining": remaining,
		"used":      used,
	}).Info("Feed quota reported")
}

// LogDegraded logs a fallback to cached or partial data.
func (fl *FeedLogger) LogDegraded(source, fallback string) {
	fl.WithFields(logrus.Fields{
		"source":   source,
		"fallback": fallback,
	}).Warn("Feed degraded, using fallback")
}
