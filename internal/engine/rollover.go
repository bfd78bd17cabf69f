package engine

import (
	"fmt"
	"time"

	"github.com/yourusername/courtside/internal/metrics"
)

// RolloverReport summarizes a season rollover.
type RolloverReport struct {
	Season         string        `json:"season"`
	TeamsRegressed int           `json:"teams_regressed"`
	KeepRatio      float64       `json:"keep_ratio"`
	Duration       time.Duration `json:"duration"`
	CompletedAt    time.Time     `json:"completed_at"`
}

// RunRollover regresses every tracked rating toward the initial rating
// and saves the result with a backup. Run once per season transition.
func (p *UpdatePipeline) RunRollover(season string) (*RolloverReport, error) {
	start := time.Now()

	ratings, form, err := p.store.Load(p.ratingCfg)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	teams := ratings.Len()
	ratings.ApplyRegression()

	if err := p.store.Save(ratings, form, true); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	metrics.RecordSeasonRollover()
	metrics.RecordStateSave()
	metrics.UpdateRatingSpread(ratingSpread(ratings))
	p.plog.LogSeasonRollover(season, teams, p.ratingCfg.RegressionKeep)

	return &RolloverReport{
		Season:         season,
		TeamsRegressed: teams,
		KeepRatio:      p.ratingCfg.RegressionKeep,
		Duration:       time.Since(start),
		CompletedAt:    time.Now(),
	}, nil
}
