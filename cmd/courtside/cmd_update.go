package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/state"
	"github.com/yourusername/courtside/internal/tracing"
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fold completed games into the rating state",
	Long: `Walk every unprocessed date from the stored resume point through the
target date (yesterday by default), fetch each scoreboard, and fold the
finals into the Elo ratings and rolling form.

Progress is durable: a feed failure saves the dates already processed,
and the next run resumes from the failed date.

Examples:
  courtside update                             # catch up through yesterday
  courtside update --date 2024-01-15           # catch up through a date
  courtside update --date 2024-01-15 --force   # reprocess that date
  courtside update --dry-run                   # preview rating movement`,
	RunE: runUpdate,
}

// Update command flags
var (
	updateDate    string
	updateFrom    string
	updateForce   bool
	updateDryRun  bool
	updateMaxDays int
)

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateDate, "date", "", "Last date to process (YYYY-MM-DD, default yesterday)")
	updateCmd.Flags().StringVar(&updateFrom, "from", "", "Override the resume point (YYYY-MM-DD)")
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Reprocess dates metadata says are already done")
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Preview rating movement without writing state")
	updateCmd.Flags().IntVar(&updateMaxDays, "max-days", engine.DefaultMaxCatchUpDays, "Cap on catch-up dates walked in one run")
}

// runUpdate executes one update run end to end
func runUpdate(cmd *cobra.Command, args []string) (err error) {
	cfg, appLog, err := bootstrap()
	if err != nil {
		return err
	}

	date, err := parseDateFlag(updateDate)
	if err != nil {
		return err
	}
	from, err := parseDateFlag(updateFrom)
	if err != nil {
		return err
	}

	if err := initTracing(cfg, appLog); err != nil {
		appLog.WithError(err).Warn("Continuing without tracing")
	}

	ctx := context.Background()
	if cfg.Tracing.Enabled {
		segCtx, seg := tracing.StartSegment(ctx, "courtside-update")
		ctx = segCtx
		defer func() { seg.Close(err) }()
	}
	tracing.AddAnnotation(ctx, "command", "update")

	espn, _, err := buildFeeds(cfg)
	if err != nil {
		return err
	}

	store := state.NewStore(cfg.State.Dir)
	pipeline := engine.NewUpdatePipeline(store, espn, ratingConfig(cfg), appLog)

	db, repos := openArchive(ctx, cfg, appLog)
	if db != nil {
		defer db.Close()
		pipeline.SetArchive(repos)
	}

	report, runErr := pipeline.Run(ctx, engine.UpdateConfig{
		Date:           date,
		From:           from,
		Force:          updateForce,
		DryRun:         updateDryRun,
		MaxCatchUpDays: updateMaxDays,
	})
	if report != nil {
		tracing.AddAnnotation(ctx, "dates_processed", report.DatesProcessed)
		tracing.AddAnnotation(ctx, "games_processed", report.GamesProcessed)
		printUpdateReport(report)
	}
	if runErr != nil {
		return fmt.Errorf("update failed: %w", runErr)
	}
	return nil
}

func printUpdateReport(report *engine.UpdateReport) {
	if report.UpToDate {
		fmt.Println("State is up to date; nothing to process.")
		return
	}

	if report.DryRun {
		printPreviews(report)
		return
	}

	fmt.Printf("Processed %d dates (%s through %s) in %s\n",
		report.DatesProcessed, report.FromDate, report.ToDate, report.Duration.Round(time.Millisecond))
	fmt.Printf("  applied %d finals, skipped %d scoreboard entries\n", report.GamesProcessed, report.GamesSkipped)
	if report.LifetimeGames > 0 {
		fmt.Printf("  lifetime games processed: %d\n", report.LifetimeGames)
	}
}

func printPreviews(report *engine.UpdateReport) {
	fmt.Printf("Dry run over %s through %s; no state written.\n\n", report.FromDate, report.ToDate)
	if len(report.Previews) == 0 {
		fmt.Println("No final games in the window.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATCHUP\tSCORE\tWINNER\tELO SHIFT")
	for _, pre := range report.Previews {
		if !pre.WouldProcess {
			fmt.Fprintf(w, "-\t-\t-\t%s\n", pre.Reason)
			continue
		}
		fmt.Fprintf(w, "%s @ %s\t%s\t%s\t%+.1f / %+.1f\n",
			pre.AwayTeam, pre.HomeTeam, pre.Score, pre.Winner, pre.DeltaHome, pre.DeltaAway)
	}
	w.Flush()
}
