package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/state"
	"github.com/yourusername/courtside/internal/tracing"
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score a slate of upcoming games",
	Long: `Score every scheduled game on a date's slate: refresh player
availability, fetch current moneylines, assemble feature vectors from the
stored ratings and form, call the win probability service, and attach
confidence tiers and market context.

Predictions never mutate state; the slate can be re-scored freely as
lines and injury reports move.

Examples:
  courtside predict                          # today's slate
  courtside predict --date 2024-01-15        # a specific date
  courtside predict --all-games              # include in-progress games
  courtside predict --output json            # machine-readable report`,
	RunE: runPredict,
}

// Predict command flags
var (
	predictDate     string
	predictAllGames bool
	predictOutput   string
)

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVar(&predictDate, "date", "", "Slate date (YYYY-MM-DD, default today)")
	predictCmd.Flags().BoolVar(&predictAllGames, "all-games", false, "Include every non-final game, not just scheduled ones")
	predictCmd.Flags().StringVar(&predictOutput, "output", "table", "Output format: table, json")
}

// runPredict scores one slate end to end
func runPredict(cmd *cobra.Command, args []string) (err error) {
	cfg, appLog, err := bootstrap()
	if err != nil {
		return err
	}

	date, err := parseDateFlag(predictDate)
	if err != nil {
		return err
	}

	if err := initTracing(cfg, appLog); err != nil {
		appLog.WithError(err).Warn("Continuing without tracing")
	}

	ctx := context.Background()
	if cfg.Tracing.Enabled {
		segCtx, seg := tracing.StartSegment(ctx, "courtside-predict")
		ctx = segCtx
		defer func() { seg.Close(err) }()
	}
	tracing.AddAnnotation(ctx, "command", "predict")

	espn, odds, err := buildFeeds(cfg)
	if err != nil {
		return err
	}
	avail := buildAvailability(cfg, espn, appLog)
	clf := buildClassifier(cfg, appLog)

	store := state.NewStore(cfg.State.Dir)
	predictor := engine.NewSlatePredictor(store, espn, odds, avail, clf, ratingConfig(cfg), appLog)
	if !cfg.Injuries.FallbackOnError {
		predictor.SetRequireFreshAvailability(true)
	}

	db, repos := openArchive(ctx, cfg, appLog)
	if db != nil {
		defer db.Close()
		predictor.SetArchive(repos)
	}

	report, err := predictor.Predict(ctx, engine.PredictConfig{
		Date:     date,
		AllGames: predictAllGames,
	})
	if err != nil {
		return fmt.Errorf("predict failed: %w", err)
	}
	tracing.AddAnnotation(ctx, "game_date", report.GameDate)
	tracing.AddAnnotation(ctx, "predictions", len(report.Predictions))

	switch strings.ToLower(predictOutput) {
	case "json":
		return outputSlateJSON(report)
	default:
		printSlateReport(report)
		return nil
	}
}

func outputSlateJSON(report *engine.SlateReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func printSlateReport(report *engine.SlateReport) {
	if report.GamesFound == 0 {
		fmt.Printf("No games on the %s slate.\n", report.GameDate)
		return
	}
	if len(report.Predictions) == 0 {
		fmt.Printf("Found %d games on %s but none could be scored (%d unmapped).\n",
			report.GamesFound, report.GameDate, report.Unmapped)
		return
	}

	fmt.Printf("Slate for %s\n\n", report.GameDate)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATCHUP\tPICK\tPROB\tTIER\tCONFIDENCE\tLINES\tBOOK")
	for _, p := range report.Predictions {
		prob := p.ProbHome
		if p.PredictedWinner == p.AwayTeam {
			prob = p.ProbAway
		}

		lines := "-"
		if p.HomeLine != nil && p.AwayLine != nil {
			lines = fmt.Sprintf("%+.0f / %+.0f", *p.HomeLine, *p.AwayLine)
		}
		book := p.Bookmaker
		if book == "" {
			book = "-"
		}

		fmt.Fprintf(w, "%s @ %s\t%s\t%.1f%%\t%s\t%d (%s)\t%s\t%s\n",
			p.AwayTeam, p.HomeTeam, p.PredictedWinner, prob*100,
			p.Tier, p.ConfidenceScore, p.Qualifier, lines, book)
	}
	w.Flush()

	printed := false
	for _, p := range report.Predictions {
		if p.HomeInjuryNote == "" && p.AwayInjuryNote == "" {
			continue
		}
		if !printed {
			fmt.Println("\nInjury notes:")
			printed = true
		}
		if p.HomeInjuryNote != "" {
			fmt.Printf("  %s: %s\n", p.HomeTeam, p.HomeInjuryNote)
		}
		if p.AwayInjuryNote != "" {
			fmt.Printf("  %s: %s\n", p.AwayTeam, p.AwayInjuryNote)
		}
	}

	fmt.Println()
	if report.Unmapped > 0 {
		fmt.Printf("Skipped %d games with unmapped teams.\n", report.Unmapped)
	}
	if report.ModelVersion != "" {
		fmt.Printf("Model %s, %d cache hits, completed in %s\n",
			report.ModelVersion, report.CacheHits, report.Duration.Round(time.Millisecond))
	} else {
		fmt.Printf("%d cache hits, completed in %s\n",
			report.CacheHits, report.Duration.Round(time.Millisecond))
	}
}
