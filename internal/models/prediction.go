package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prediction represents a scored prediction for a single game, ready for
// display and archiving.
type Prediction struct {
	ID                uuid.UUID           `db:"id" json:"id" validate:"required,uuid4"`
	GameDate          string              `db:"game_date" json:"game_date" validate:"required"`
	HomeTeam          string              `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam          string              `db:"away_team" json:"away_team" validate:"required"`
	ProbHome          float64             `db:"prob_home" json:"prob_home" validate:"gte=0,lte=1"`
	ProbAway          float64             `db:"prob_away" json:"prob_away" validate:"gte=0,lte=1"`
	PredictedWinner   string              `db:"predicted_winner" json:"predicted_winner"`
	Tier              string              `db:"tier" json:"tier"`
	ConfidenceScore   int                 `db:"confidence_score" json:"confidence_score" validate:"gte=0,lte=100"`
	Qualifier         string              `db:"qualifier" json:"qualifier"`
	ConfidenceFactors json.RawMessage     `db:"confidence_factors" json:"confidence_factors,omitempty"`
	MarketProbHome    float64             `db:"market_prob_home" json:"market_prob_home"`
	MarketProbAway    float64             `db:"market_prob_away" json:"market_prob_away"`
	HomeLine          *float64            `db:"home_line" json:"home_line,omitempty"`
	AwayLine          *float64            `db:"away_line" json:"away_line,omitempty"`
	HomeDecimalOdds   decimal.NullDecimal `db:"home_decimal_odds" json:"home_decimal_odds"`
	AwayDecimalOdds   decimal.NullDecimal `db:"away_decimal_odds" json:"away_decimal_odds"`
	Bookmaker         string              `db:"bookmaker" json:"bookmaker,omitempty"`
	EloHome           float64             `db:"elo_home" json:"elo_home"`
	EloAway           float64             `db:"elo_away" json:"elo_away"`
	HomeInjuryNote    string              `db:"home_injury_note" json:"home_injury_note,omitempty"`
	AwayInjuryNote    string              `db:"away_injury_note" json:"away_injury_note,omitempty"`
	PredictedAt       time.Time           `db:"predicted_at" json:"predicted_at" validate:"required"`
}

// GetFactor retrieves a confidence factor value by name.
func (p *Prediction) GetFactor(name string) (float64, bool) {
	if p.ConfidenceFactors == nil {
		return 0, false
	}

	var factors map[string]float64
	if err := json.Unmarshal(p.ConfidenceFactors, &factors); err != nil {
		return 0, false
	}

	v, ok := factors[name]
	return v, ok
}

// Favourite returns the side the model favours.
func (p *Prediction) Favourite() string {
	if p.ProbHome >= 0.5 {
		return p.HomeTeam
	}
	return p.AwayTeam
}

// MeetsThreshold checks if the confidence score meets the given threshold.
func (p *Prediction) MeetsThreshold(threshold int) bool {
	return p.ConfidenceScore >= threshold
}

// Edge returns the model-versus-market probability gap on the home side,
// zero when no market prob is present.
func (p *Prediction) Edge() float64 {
	if p.MarketProbHome == 0 {
		return 0
	}
	return p.ProbHome - p.MarketProbHome
}
