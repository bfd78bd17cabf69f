package availability

import (
	"fmt"

	"github.com/yourusername/courtside/internal/models"
)

// CalculatorConfig tunes how injury reports convert to rating adjustments.
type CalculatorConfig struct {
	// Enabled short-circuits the calculator to zero when false.
	Enabled bool

	// BaseMultiplier is the rating cost of one weighted severity point.
	BaseMultiplier float64

	// MaxAdjustment is the most negative adjustment allowed.
	MaxAdjustment float64

	// MinAdjustment is the weakest adjustment worth applying; anything
	// closer to zero is snapped to zero.
	MinAdjustment float64

	// UsePlayerImportance applies tier multipliers per player.
	UsePlayerImportance bool
}

// DefaultCalculatorConfig returns the production tuning.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{
		Enabled:             true,
		BaseMultiplier:      20.0,
		MaxAdjustment:       -100.0,
		MinAdjustment:       -5.0,
		UsePlayerImportance: true,
	}
}

// Calculator converts a team injury report into a rating adjustment.
type Calculator struct {
	cfg CalculatorConfig
}

// NewCalculator creates a Calculator with the given tuning.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Adjustment returns the rating adjustment for a report. The result is
// zero or negative: each player contributes severity x importance x base,
// the sum is negated, clamped at MaxAdjustment, and snapped to zero when
// weaker than MinAdjustment.
func (c *Calculator) Adjustment(report *models.TeamInjuryReport) float64 {
	if report == nil || len(report.Players) == 0 {
		return 0.0
	}
	if !c.cfg.Enabled {
		return 0.0
	}

	total := 0.0
	for i := range report.Players {
		p := &report.Players[i]
		importance := 1.0
		if c.cfg.UsePlayerImportance {
			importance = TierFor(p.PlayerName).Multiplier()
		}
		total += p.Severity() * importance * c.cfg.BaseMultiplier
	}

	adjustment := -total
	switch {
	case adjustment < c.cfg.MaxAdjustment:
		adjustment = c.cfg.MaxAdjustment
	case adjustment > c.cfg.MinAdjustment:
		adjustment = 0.0
	}

	return adjustment
}

// Summarize renders one "Name (Status)" line per reported player, for
// cache entries and prediction context.
func Summarize(report *models.TeamInjuryReport) []string {
	if report == nil || len(report.Players) == 0 {
		return nil
	}
	out := make([]string, 0, len(report.Players))
	for i := range report.Players {
		p := &report.Players[i]
		out = append(out, fmt.Sprintf("%s (%s)", p.PlayerName, p.Status))
	}
	return out
}

// BuildEntry assembles a cache entry from a report and its computed
// adjustment.
func (c *Calculator) BuildEntry(teamID int, report *models.TeamInjuryReport) Entry {
	e := Entry{
		TeamID:     teamID,
		Adjustment: c.Adjustment(report),
	}
	if report != nil {
		e.TeamName = report.TeamName
		e.Severity = report.TotalSeverity()
		e.Count = len(report.Players)
		e.Summary = Summarize(report)
	}
	return e
}
