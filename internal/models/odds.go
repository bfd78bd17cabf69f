package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MoneylineQuote represents a point-in-time moneyline snapshot for a game.
// Lines are American odds; a nil line means the market had no price.
type MoneylineQuote struct {
	Time      time.Time `db:"time" json:"time" validate:"required"`
	GameDate  string    `db:"game_date" json:"game_date" validate:"required"`
	HomeTeam  string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string    `db:"away_team" json:"away_team" validate:"required"`
	HomeLine  *float64  `db:"home_line" json:"home_line"`
	AwayLine  *float64  `db:"away_line" json:"away_line"`
	Bookmaker string    `db:"bookmaker" json:"bookmaker"`
}

// ImpliedProbability converts an American moneyline to an implied win
// probability. A nil line yields the uninformative 0.5.
func ImpliedProbability(line *float64) float64 {
	if line == nil {
		return 0.5
	}
	ml := *line
	if ml > 0 {
		return 100.0 / (ml + 100.0)
	}
	return math.Abs(ml) / (math.Abs(ml) + 100.0)
}

// DecimalOdds converts an American moneyline to decimal odds.
// A nil or zero line yields 0.
func DecimalOdds(line *float64) float64 {
	if line == nil || *line == 0 {
		return 0
	}
	ml := *line
	if ml > 0 {
		return 1.0 + ml/100.0
	}
	return 1.0 + 100.0/math.Abs(ml)
}

// DecimalOddsValue converts an American moneyline to nullable decimal
// odds for archive bookkeeping. A nil or zero line yields null.
func DecimalOddsValue(line *float64) decimal.NullDecimal {
	if line == nil || *line == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: decimal.NewFromFloat(DecimalOdds(line)).Round(3),
		Valid:   true,
	}
}

// HomeImpliedProbability returns the implied probability from the home line.
func (q *MoneylineQuote) HomeImpliedProbability() float64 {
	return ImpliedProbability(q.HomeLine)
}

// AwayImpliedProbability returns the implied probability from the away line.
func (q *MoneylineQuote) AwayImpliedProbability() float64 {
	return ImpliedProbability(q.AwayLine)
}

// Overround returns the bookmaker margin baked into the two-way market,
// zero when either side is unpriced.
func (q *MoneylineQuote) Overround() float64 {
	if q.HomeLine == nil || q.AwayLine == nil {
		return 0
	}
	return ImpliedProbability(q.HomeLine) + ImpliedProbability(q.AwayLine) - 1.0
}
