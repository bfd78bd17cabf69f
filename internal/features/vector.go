// Package features assembles classifier input vectors from ratings,
// rolling form, rest, market and availability signals.
package features

// NumFeatures is the width of the classifier input, contract version 1.
const NumFeatures = 31

// columns lists feature names in the exact order the classifier was
// trained on. Do not reorder.
var columns = []string{
	"elo_home", "elo_away", "elo_diff", "elo_prob",
	"pf_roll_home", "pf_roll_away", "pf_roll_diff",
	"pa_roll_home", "pa_roll_away", "pa_roll_diff",
	"win_roll_home", "win_roll_away", "win_roll_diff",
	"margin_roll_home", "margin_roll_away", "margin_roll_diff",
	"games_in_window_home", "games_in_window_away",
	"home_rest_days", "away_rest_days",
	"home_b2b", "away_b2b", "rest_diff",
	"market_prob_home", "market_prob_away",
	"home_players_out", "away_players_out",
	"home_players_questionable", "away_players_questionable",
	"home_injury_severity", "away_injury_severity",
}

// Columns returns the feature names in classifier order.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Vector is one classifier input record. Field order mirrors Columns;
// Slice flattens it for the wire.
type Vector struct {
	EloHome float64
	EloAway float64
	EloDiff float64
	EloProb float64

	PFRollHome float64
	PFRollAway float64
	PFRollDiff float64
	PARollHome float64
	PARollAway float64
	PARollDiff float64

	WinRollHome float64
	WinRollAway float64
	WinRollDiff float64

	MarginRollHome float64
	MarginRollAway float64
	MarginRollDiff float64

	GamesInWindowHome float64
	GamesInWindowAway float64

	HomeRestDays float64
	AwayRestDays float64
	HomeB2B      float64
	AwayB2B      float64
	RestDiff     float64

	MarketProbHome float64
	MarketProbAway float64

	HomePlayersOut          float64
	AwayPlayersOut          float64
	HomePlayersQuestionable float64
	AwayPlayersQuestionable float64
	HomeInjurySeverity      float64
	AwayInjurySeverity      float64
}

// Slice returns the values in classifier order.
func (v *Vector) Slice() []float64 {
	return []float64{
		v.EloHome, v.EloAway, v.EloDiff, v.EloProb,
		v.PFRollHome, v.PFRollAway, v.PFRollDiff,
		v.PARollHome, v.PARollAway, v.PARollDiff,
		v.WinRollHome, v.WinRollAway, v.WinRollDiff,
		v.MarginRollHome, v.MarginRollAway, v.MarginRollDiff,
		v.GamesInWindowHome, v.GamesInWindowAway,
		v.HomeRestDays, v.AwayRestDays,
		v.HomeB2B, v.AwayB2B, v.RestDiff,
		v.MarketProbHome, v.MarketProbAway,
		v.HomePlayersOut, v.AwayPlayersOut,
		v.HomePlayersQuestionable, v.AwayPlayersQuestionable,
		v.HomeInjurySeverity, v.AwayInjurySeverity,
	}
}

// Map returns name to value pairs, for logging and inspection.
func (v *Vector) Map() map[string]float64 {
	vals := v.Slice()
	out := make(map[string]float64, len(vals))
	for i, name := range columns {
		out[name] = vals[i]
	}
	return out
}
