// Package confidence produces a 0-100 interpretability score for each
// prediction, separate from the classifier's raw probability.
package confidence

import (
	"math"

	"github.com/yourusername/courtside/internal/features"
	"github.com/yourusername/courtside/internal/rolling"
)

// Confidence qualifiers.
const (
	QualifierHigh     = "High Certainty"
	QualifierModerate = "Moderate"
	QualifierVolatile = "Volatile"
)

const (
	// Model-versus-market disagreement bounds.
	consensusPerfectThresh = 0.03
	consensusZeroThresh    = 0.15

	// Margin standard-deviation bounds for form stability.
	volatilityLowThresh  = 5.0
	volatilityHighThresh = 15.0

	// Probability distance from 0.5 bounds for matchup certainty.
	certaintyDecisiveThresh = 0.25
	certaintyTossupThresh   = 0.05
)

// Factors is the per-factor breakdown, each rounded to one decimal.
type Factors struct {
	ConsensusAgreement float64 `json:"consensus_agreement"`
	FeatureAlignment   float64 `json:"feature_alignment"`
	FormStability      float64 `json:"form_stability"`
	ScheduleContext    float64 `json:"schedule_context"`
	MatchupHistory     float64 `json:"matchup_history"`
}

// Result is a scored confidence breakdown.
type Result struct {
	Total     int     `json:"score"`
	Factors   Factors `json:"factors"`
	Qualifier string  `json:"qualifier"`
}

// Scorer combines five contextual factors into a confidence score.
// Every factor is total and side-effect-free.
type Scorer struct {
	form *rolling.Tracker
}

// NewScorer creates a Scorer reading form volatility from the given
// tracker.
func NewScorer(form *rolling.Tracker) *Scorer {
	return &Scorer{form: form}
}

// Score rates how trustworthy a prediction is. probHome is the
// classifier's home win probability and v the vector it saw.
func (s *Scorer) Score(probHome float64, v *features.Vector, homeID, awayID int) Result {
	consensus := s.consensusAgreement(probHome, v)
	alignment := s.featureAlignment(probHome, v)
	stability := s.formStability(homeID, awayID)
	schedule := s.scheduleContext(v)
	certainty := s.matchupCertainty(probHome)

	factors := Factors{
		ConsensusAgreement: round1(consensus),
		FeatureAlignment:   round1(alignment),
		FormStability:      round1(stability),
		ScheduleContext:    round1(schedule),
		MatchupHistory:     round1(certainty),
	}

	// Total from the unrounded factors; the breakdown is rounded for
	// display only.
	score := int(math.Round(consensus + alignment + stability + schedule + certainty))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{
		Total:     score,
		Factors:   factors,
		Qualifier: QualifierFor(score),
	}
}

// consensusAgreement scores model agreement with the betting market.
// Max 25 points.
func (s *Scorer) consensusAgreement(probHome float64, v *features.Vector) float64 {
	market := v.MarketProbHome

	// A market probability of ~0.5 means no real market signal.
	if math.Abs(market-0.5) < 0.01 {
		return 15.0
	}

	disagreement := math.Abs(probHome - market)
	switch {
	case disagreement <= consensusPerfectThresh:
		return 25.0
	case disagreement >= consensusZeroThresh:
		return 0.0
	default:
		ratio := (disagreement - consensusPerfectThresh) /
			(consensusZeroThresh - consensusPerfectThresh)
		return 25.0 * (1 - ratio)
	}
}

// featureAlignment scores how many directional signals point the same
// way as the model. Near-zero differentials count as agreement. Max 25
// points.
func (s *Scorer) featureAlignment(probHome float64, v *features.Vector) float64 {
	modelFavorsHome := probHome > 0.5

	agree, counted := 0, 0

	if (v.EloProb > 0.5) == modelFavorsHome {
		agree++
	}
	counted++

	if (v.WinRollDiff > 0) == modelFavorsHome || math.Abs(v.WinRollDiff) < 0.05 {
		agree++
	}
	counted++

	if (v.MarginRollDiff > 0) == modelFavorsHome || math.Abs(v.MarginRollDiff) < 1.0 {
		agree++
	}
	counted++

	// Rest only signals when the gap is meaningful.
	if math.Abs(v.RestDiff) >= 2 {
		if (v.RestDiff > 0) == modelFavorsHome {
			agree++
		}
		counted++
	}

	if counted == 0 {
		return 15.0
	}
	return 25.0 * float64(agree) / float64(counted)
}

// formStability scores the combined volatility of both teams' recent
// margins. Max 20 points, floor 5.
func (s *Scorer) formStability(homeID, awayID int) float64 {
	home := s.form.Volatility(homeID)
	away := s.form.Volatility(awayID)

	avgStd := (home.MarginStd + away.MarginStd) / 2

	switch {
	case avgStd <= volatilityLowThresh:
		return 20.0
	case avgStd >= volatilityHighThresh:
		return 5.0
	default:
		ratio := (avgStd - volatilityLowThresh) /
			(volatilityHighThresh - volatilityLowThresh)
		return 20.0 - 15.0*ratio
	}
}

// scheduleContext penalizes back-to-backs and rewards a clear rest
// edge. Max 15 points.
func (s *Scorer) scheduleContext(v *features.Vector) float64 {
	score := 15.0

	if v.HomeB2B > 0 {
		score -= 5.0
	}
	if v.AwayB2B > 0 {
		score -= 5.0
	}
	if math.Abs(v.RestDiff) >= 2 {
		score += 5.0
	}

	return math.Max(0.0, math.Min(15.0, score))
}

// matchupCertainty scores how decisive the model probability is, using
// distance from the 0.5 toss-up. Max 15 points, floor 5.
func (s *Scorer) matchupCertainty(probHome float64) float64 {
	distance := math.Abs(probHome - 0.5)

	switch {
	case distance >= certaintyDecisiveThresh:
		return 15.0
	case distance <= certaintyTossupThresh:
		return 5.0
	default:
		ratio := (distance - certaintyTossupThresh) /
			(certaintyDecisiveThresh - certaintyTossupThresh)
		return 5.0 + 10.0*ratio
	}
}

// QualifierFor maps a score to its textual qualifier.
func QualifierFor(score int) string {
	switch {
	case score >= 75:
		return QualifierHigh
	case score >= 50:
		return QualifierModerate
	default:
		return QualifierVolatile
	}
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
