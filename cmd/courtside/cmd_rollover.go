package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/state"
)

// rolloverCmd represents the rollover command
var rolloverCmd = &cobra.Command{
	Use:   "rollover",
	Short: "Apply the season rating regression",
	Long: `Regress every tracked rating toward the initial rating, keeping the
configured fraction of each team's deviation. Run once at the season
boundary, before the first update of the new season. A backup of the
previous state is written first.`,
	RunE: runRollover,
}

var rolloverSeason string

func init() {
	rootCmd.AddCommand(rolloverCmd)

	rolloverCmd.Flags().StringVar(&rolloverSeason, "season", "", "Season label for logs (e.g. 2024-25)")
}

// runRollover applies the regression and saves the result
func runRollover(cmd *cobra.Command, args []string) error {
	cfg, appLog, err := bootstrap()
	if err != nil {
		return err
	}

	store := state.NewStore(cfg.State.Dir)
	pipeline := engine.NewUpdatePipeline(store, nil, ratingConfig(cfg), appLog)

	report, err := pipeline.RunRollover(rolloverSeason)
	if err != nil {
		return fmt.Errorf("rollover failed: %w", err)
	}

	fmt.Printf("Regressed %d team ratings toward %.0f, keeping %.0f%% of each deviation.\n",
		report.TeamsRegressed, cfg.Rating.InitialRating, report.KeepRatio*100)
	return nil
}
