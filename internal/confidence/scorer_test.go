package confidence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/courtside/internal/features"
	"github.com/yourusername/courtside/internal/rolling"
)

func TestConsensusAgreement(t *testing.T) {
	s := NewScorer(rolling.NewTracker())

	tests := []struct {
		name     string
		probHome float64
		market   float64
		want     float64
	}{
		{"no market signal", 0.70, 0.5, 15.0},
		{"near perfect agreement", 0.62, 0.60, 25.0},
		{"total disagreement", 0.80, 0.55, 0.0},
		{"halfway between thresholds", 0.64, 0.55, 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &features.Vector{MarketProbHome: tt.market}
			assert.InDelta(t, tt.want, s.consensusAgreement(tt.probHome, v), 1e-9)
		})
	}
}

func TestFeatureAlignmentAllAgree(t *testing.T) {
	s := NewScorer(rolling.NewTracker())
	v := &features.Vector{
		EloProb:        0.65,
		WinRollDiff:    0.2,
		MarginRollDiff: 4.0,
		RestDiff:       3.0,
	}

	assert.InDelta(t, 25.0, s.featureAlignment(0.7, v), 1e-9)
}

func TestFeatureAlignmentSmallDiffsForgiven(t *testing.T) {
	s := NewScorer(rolling.NewTracker())

	// Win and margin tilt slightly away from the model but inside the
	// noise thresholds, so they still count as agreement.
	v := &features.Vector{
		EloProb:        0.60,
		WinRollDiff:    -0.03,
		MarginRollDiff: -0.5,
		RestDiff:       0.0,
	}

	assert.InDelta(t, 25.0, s.featureAlignment(0.7, v), 1e-9)
}

func TestFeatureAlignmentRestOnlyCountsWhenMeaningful(t *testing.T) {
	s := NewScorer(rolling.NewTracker())

	// Rest gap of one day is ignored: three counted signals, one
	// disagreeing.
	v := &features.Vector{
		EloProb:        0.40,
		WinRollDiff:    0.2,
		MarginRollDiff: 4.0,
		RestDiff:       -1.0,
	}
	assert.InDelta(t, 25.0*2.0/3.0, s.featureAlignment(0.7, v), 1e-9)

	// A two-day gap against the model becomes a fourth, disagreeing
	// signal.
	v.RestDiff = -2.0
	assert.InDelta(t, 25.0*2.0/4.0, s.featureAlignment(0.7, v), 1e-9)
}

func TestFormStability(t *testing.T) {
	form := rolling.NewTracker()
	s := NewScorer(form)

	// No history on either side: both default to std 10, the midpoint.
	assert.InDelta(t, 12.5, s.formStability(1, 2), 1e-9)

	// Identical margins every night pins both stds to zero.
	for i := 0; i < 10; i++ {
		form.Record(3, 110, 100, true, fmt.Sprintf("2024-01-%02d", i+1))
		form.Record(4, 108, 100, true, fmt.Sprintf("2024-01-%02d", i+1))
	}
	assert.InDelta(t, 20.0, s.formStability(3, 4), 1e-9)

	// Wild margin swings bottom out at the floor.
	swings := []int{30, -25, 35, -30, 25, -35, 40, -20, 30, -40}
	for i, m := range swings {
		form.Record(5, 110+m, 110, m > 0, fmt.Sprintf("2024-01-%02d", i+1))
		form.Record(6, 110+m, 110, m > 0, fmt.Sprintf("2024-01-%02d", i+1))
	}
	assert.InDelta(t, 5.0, s.formStability(5, 6), 1e-9)
}

func TestScheduleContext(t *testing.T) {
	s := NewScorer(rolling.NewTracker())

	tests := []struct {
		name    string
		homeB2B float64
		awayB2B float64
		rest    float64
		want    float64
	}{
		{"fully rested", 0, 0, 0, 15.0},
		{"home back to back", 1, 0, -1, 10.0},
		{"both back to back", 1, 1, 0, 5.0},
		{"clear rest edge", 0, 0, 3, 15.0},
		{"away b2b with rest edge", 0, 1, 2, 15.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &features.Vector{HomeB2B: tt.homeB2B, AwayB2B: tt.awayB2B, RestDiff: tt.rest}
			assert.InDelta(t, tt.want, s.scheduleContext(v), 1e-9)
		})
	}
}

func TestMatchupCertainty(t *testing.T) {
	s := NewScorer(rolling.NewTracker())

	assert.InDelta(t, 15.0, s.matchupCertainty(0.80), 1e-9)
	assert.InDelta(t, 15.0, s.matchupCertainty(0.20), 1e-9)
	assert.InDelta(t, 5.0, s.matchupCertainty(0.52), 1e-9)
	assert.InDelta(t, 10.0, s.matchupCertainty(0.65), 1e-9)
}

func TestScoreTotalsAndQualifier(t *testing.T) {
	s := NewScorer(rolling.NewTracker())

	// Neutral market, three agreeing signals, default volatility, clean
	// schedule, mild favorite: 15 + 25 + 12.5 + 15 + 7.5 = 75.
	v := &features.Vector{
		EloProb:        0.60,
		WinRollDiff:    0.10,
		MarginRollDiff: 2.0,
		MarketProbHome: 0.5,
		MarketProbAway: 0.5,
	}

	result := s.Score(0.60, v, 1, 2)

	assert.Equal(t, 75, result.Total)
	assert.Equal(t, QualifierHigh, result.Qualifier)
	assert.Equal(t, 15.0, result.Factors.ConsensusAgreement)
	assert.Equal(t, 25.0, result.Factors.FeatureAlignment)
	assert.Equal(t, 12.5, result.Factors.FormStability)
	assert.Equal(t, 15.0, result.Factors.ScheduleContext)
	assert.Equal(t, 7.5, result.Factors.MatchupHistory)
}

func TestScoreClampedToRange(t *testing.T) {
	s := NewScorer(rolling.NewTracker())

	// Even the weakest configuration stays within [0,100].
	v := &features.Vector{
		EloProb:        0.30,
		WinRollDiff:    -0.3,
		MarginRollDiff: -8.0,
		RestDiff:       -3.0,
		HomeB2B:        1,
		AwayB2B:        1,
		MarketProbHome: 0.75,
	}

	result := s.Score(0.51, v, 1, 2)

	assert.GreaterOrEqual(t, result.Total, 0)
	assert.LessOrEqual(t, result.Total, 100)
	assert.Equal(t, QualifierVolatile, result.Qualifier)
}

func TestQualifierFor(t *testing.T) {
	assert.Equal(t, QualifierHigh, QualifierFor(75))
	assert.Equal(t, QualifierHigh, QualifierFor(100))
	assert.Equal(t, QualifierModerate, QualifierFor(74))
	assert.Equal(t, QualifierModerate, QualifierFor(50))
	assert.Equal(t, QualifierVolatile, QualifierFor(49))
	assert.Equal(t, QualifierVolatile, QualifierFor(0))
}
