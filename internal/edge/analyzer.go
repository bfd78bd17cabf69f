// Package edge compares model probabilities against bookmaker prices and
// surfaces the games where the two disagree.
package edge

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/courtside/internal/models"
)

// DisagreementThreshold is the absolute home-side probability gap beyond
// which a game is flagged as high disagreement.
const DisagreementThreshold = 0.10

// Sides a signal can back.
const (
	SideHome = "home"
	SideAway = "away"
)

// Config bounds which model-versus-market gaps become signals
type Config struct {
	MinEdge       float64
	MinConfidence int
	MinPrice      decimal.Decimal
	MaxPrice      decimal.Decimal
	KellyFraction float64
	Bankroll      decimal.Decimal
}

// DefaultConfig returns the analyzer defaults. The edge floor matches the
// divergence level treated as noteworthy in slate output; the price cap
// excludes longshots whose implied probabilities carry the most vig.
func DefaultConfig() Config {
	return Config{
		MinEdge:       0.05,
		MinConfidence: 50,
		MinPrice:      decimal.NewFromFloat(1.01),
		MaxPrice:      decimal.NewFromInt(20),
		KellyFraction: 0.5,
		Bankroll:      decimal.NewFromInt(100),
	}
}

// Signal represents one game side where the model clears the quoted price
type Signal struct {
	GameDate      string          `json:"game_date"`
	Team          string          `json:"team"`
	Opponent      string          `json:"opponent"`
	Side          string          `json:"side"`
	ModelProb     float64         `json:"model_prob"`
	MarketProb    float64         `json:"market_prob"`
	Edge          float64         `json:"edge"`
	Price         decimal.Decimal `json:"price"`
	Bookmaker     string          `json:"bookmaker,omitempty"`
	ExpectedValue decimal.Decimal `json:"expected_value"`
	Stake         decimal.Decimal `json:"stake"`
	Disagreement  bool            `json:"high_disagreement"`
	Note          string          `json:"note,omitempty"`
}

// Summary aggregates the signed home-side gaps across a slate.
type Summary struct {
	Games            int     `json:"games"`
	Priced           int     `json:"priced"`
	Signals          int     `json:"signals"`
	MeanEdge         float64 `json:"mean_edge"`
	StdDev           float64 `json:"std_dev"`
	MaxEdge          float64 `json:"max_edge"`
	MinEdge          float64 `json:"min_edge"`
	HighDisagreement int     `json:"high_disagreement"`
}

// Analyzer evaluates scored slates for value signals
type Analyzer struct {
	cfg    Config
	logger *logrus.Logger
}

// NewAnalyzer creates an analyzer with the given thresholds
func NewAnalyzer(cfg Config, logger *logrus.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logger}
}

// Evaluate walks a slate and emits a signal for each side whose model
// probability beats the implied market probability by at least MinEdge.
// Signals come back ordered by descending edge; the summary covers every
// priced game, signal or not.
func (a *Analyzer) Evaluate(predictions []*models.Prediction) ([]Signal, Summary) {
	summary := Summary{Games: len(predictions)}

	var signals []Signal
	var homeEdges []float64

	for _, p := range predictions {
		if p == nil || p.MarketProbHome == 0 {
			continue
		}
		summary.Priced++

		homeEdge := clampProbability(p.ProbHome) - p.MarketProbHome
		homeEdges = append(homeEdges, homeEdge)
		if math.Abs(homeEdge) >= DisagreementThreshold {
			summary.HighDisagreement++
		}

		if sig, ok := a.buildSignal(p, SideHome); ok {
			signals = append(signals, sig)
		}
		if sig, ok := a.buildSignal(p, SideAway); ok {
			signals = append(signals, sig)
		}
	}

	sort.Slice(signals, func(i, j int) bool {
		return signals[i].Edge > signals[j].Edge
	})

	summary.Signals = len(signals)
	summary.MeanEdge, summary.StdDev = meanStd(homeEdges)
	summary.MaxEdge, summary.MinEdge = extremes(homeEdges)

	if a.logger != nil {
		a.logger.WithFields(logrus.Fields{
			"games":             summary.Games,
			"priced":            summary.Priced,
			"signals":           summary.Signals,
			"high_disagreement": summary.HighDisagreement,
		}).Info("Slate edge analysis complete")
	}

	return signals, summary
}

// buildSignal evaluates a single side of a game against its quoted price
func (a *Analyzer) buildSignal(p *models.Prediction, side string) (Signal, bool) {
	var (
		team, opponent        string
		modelProb, marketProb float64
		price                 decimal.NullDecimal
	)
	switch side {
	case SideHome:
		team, opponent = p.HomeTeam, p.AwayTeam
		modelProb, marketProb = p.ProbHome, p.MarketProbHome
		price = p.HomeDecimalOdds
	default:
		team, opponent = p.AwayTeam, p.HomeTeam
		modelProb, marketProb = p.ProbAway, p.MarketProbAway
		price = p.AwayDecimalOdds
	}

	modelProb = clampProbability(modelProb)
	gap := modelProb - marketProb
	if gap < a.cfg.MinEdge {
		return Signal{}, false
	}
	if p.ConfidenceScore < a.cfg.MinConfidence {
		return Signal{}, false
	}
	if !price.Valid || !a.priceInBounds(price.Decimal) {
		return Signal{}, false
	}

	stake := a.kellyStake(modelProb, price.Decimal)
	if stake.IsZero() {
		return Signal{}, false
	}

	sig := Signal{
		GameDate:      p.GameDate,
		Team:          team,
		Opponent:      opponent,
		Side:          side,
		ModelProb:     modelProb,
		MarketProb:    marketProb,
		Edge:          gap,
		Price:         price.Decimal,
		Bookmaker:     p.Bookmaker,
		ExpectedValue: expectedValue(modelProb, price.Decimal, stake),
		Stake:         stake,
		Disagreement:  gap >= DisagreementThreshold,
	}
	if sig.Disagreement {
		sig.Note = fmt.Sprintf("Model and market disagree by %.1f points, possible late injury news or sharp-money signal", gap*100)
	}
	return sig, true
}

// priceInBounds ensures the quoted price is within acceptable bounds
func (a *Analyzer) priceInBounds(price decimal.Decimal) bool {
	if price.LessThanOrEqual(decimal.NewFromInt(1)) {
		return false
	}
	if a.cfg.MinPrice.IsPositive() && price.LessThan(a.cfg.MinPrice) {
		return false
	}
	if a.cfg.MaxPrice.IsPositive() && price.GreaterThan(a.cfg.MaxPrice) {
		return false
	}
	return true
}

// kellyStake sizes a stake with the fractional Kelly criterion against
// the configured bankroll. Returns zero when the price offers no growth.
func (a *Analyzer) kellyStake(probability float64, price decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if probability <= 0 || price.LessThanOrEqual(one) {
		return decimal.Zero
	}

	p := decimal.NewFromFloat(probability)
	q := one.Sub(p)
	b := price.Sub(one)

	kelly := b.Mul(p).Sub(q).Div(b)
	if kelly.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	fraction := a.cfg.KellyFraction
	if fraction <= 0 {
		fraction = 0.5
	}

	return a.cfg.Bankroll.Mul(kelly).Mul(decimal.NewFromFloat(fraction)).Round(2)
}

// expectedValue returns the expected profit on the stake at the quoted
// price: p*(price-1)*stake - (1-p)*stake.
func expectedValue(probability float64, price decimal.Decimal, stake decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	p := decimal.NewFromFloat(probability)
	q := one.Sub(p)
	winProfit := price.Sub(one).Mul(stake)
	return p.Mul(winProfit).Sub(q.Mul(stake)).Round(2)
}

// clampProbability bounds a probability to [0,1]
func clampProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// meanStd returns the mean and sample standard deviation of the gaps
func meanStd(edges []float64) (mean, std float64) {
	if len(edges) == 0 {
		return 0, 0
	}
	for _, e := range edges {
		mean += e
	}
	mean /= float64(len(edges))

	if len(edges) < 2 {
		return mean, 0
	}
	var ss float64
	for _, e := range edges {
		d := e - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(edges)-1))
}

// extremes returns the largest and smallest signed gaps
func extremes(edges []float64) (hi, lo float64) {
	if len(edges) == 0 {
		return 0, 0
	}
	hi, lo = edges[0], edges[0]
	for _, e := range edges[1:] {
		if e > hi {
			hi = e
		}
		if e < lo {
			lo = e
		}
	}
	return hi, lo
}
