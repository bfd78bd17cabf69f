package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordGameProcessed(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordGameProcessed()
	})
}

func TestRecordUpdateRunDuration(t *testing.T) {
	InitRegistry()
	durationSeconds := 12.5

	assert.NotPanics(t, func() {
		RecordUpdateRunDuration(durationSeconds)
	})
}

func TestRecordEloShift(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name   string
		points float64
	}{
		{
			name:   "favorite win",
			points: 4.2,
		},
		{
			name:   "upset",
			points: 15.8,
		},
		{
			name:   "negative shift recorded as magnitude",
			points: -6.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordEloShift(tt.points)
			})
		})
	}
}

func TestUpdateTeamsRated(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		count float64
	}{
		{
			name:  "full league",
			count: 30,
		},
		{
			name:  "early season",
			count: 12,
		},
		{
			name:  "empty state",
			count: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateTeamsRated(tt.count)
			})
		})
	}
}

func TestRecordSeasonRollover(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSeasonRollover()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func TestPredictionMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordPredictionTier("Moderate Favorite", 72.5)
	})

	assert.NotPanics(t, func() {
		RecordMarketComparison("with_market")
	})

	assert.NotPanics(t, func() {
		UpdateModelVersion("v3")
	})
}

func TestFeedMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordFeedRequest("scoreboard", "success")
	})

	assert.NotPanics(t, func() {
		ObserveFeedRequestDuration("scoreboard", 0.24)
	})

	assert.NotPanics(t, func() {
		UpdateOddsQuota(482, 18)
	})
}

func BenchmarkRecordGameProcessed(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordGameProcessed()
	}
}

func BenchmarkRecordPredictionTier(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordPredictionTier("Moderate Favorite", 72.5)
	}
}

func BenchmarkUpdateTeamsRated(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		UpdateTeamsRated(30)
	}
}
