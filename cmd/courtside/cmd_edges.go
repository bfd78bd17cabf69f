package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/config"
	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/edge"
	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/state"
)

// edgesCmd represents the edges command
var edgesCmd = &cobra.Command{
	Use:   "edges",
	Short: "Rank a slate by model-versus-market edge",
	Long: `Compare model win probabilities against bookmaker prices and rank
the sides where the model sees value. When the archive holds the date
its rows are used, since they carry the prices the model actually saw;
otherwise the slate is scored fresh.

Examples:
  courtside edges
  courtside edges --date 2025-01-15
  courtside edges --min-edge 0.08 --output json`,
	RunE: runEdges,
}

var (
	edgesDate    string
	edgesMinEdge float64
	edgesOutput  string
)

func init() {
	rootCmd.AddCommand(edgesCmd)
	edgesCmd.Flags().StringVar(&edgesDate, "date", "", "Slate date in YYYY-MM-DD format (default today)")
	edgesCmd.Flags().Float64Var(&edgesMinEdge, "min-edge", 0.05, "Minimum model-versus-market probability gap for a signal")
	edgesCmd.Flags().StringVar(&edgesOutput, "output", "table", "Output format: table, json")
}

func runEdges(cmd *cobra.Command, args []string) error {
	cfg, appLog, err := bootstrap()
	if err != nil {
		return err
	}

	date, err := parseDateFlag(edgesDate)
	if err != nil {
		return err
	}
	gameDate := time.Now().Format("2006-01-02")
	if !date.IsZero() {
		gameDate = date.Format("2006-01-02")
	}

	ctx := context.Background()

	predictions, err := loadPredictions(ctx, cfg, appLog, date, gameDate)
	if err != nil {
		return err
	}
	if len(predictions) == 0 {
		fmt.Printf("No scored predictions for %s.\n", gameDate)
		return nil
	}

	edgeCfg := edge.DefaultConfig()
	if edgesMinEdge > 0 {
		edgeCfg.MinEdge = edgesMinEdge
	}
	signals, summary := edge.NewAnalyzer(edgeCfg, appLog).Evaluate(predictions)

	if strings.ToLower(edgesOutput) == "json" {
		return outputEdgesJSON(signals, summary)
	}
	printEdgeBoard(gameDate, signals, summary)
	return nil
}

// loadPredictions prefers the archived slate for the date; without an
// archive, or when the date was never archived, it scores the slate
// fresh through the full prediction flow.
func loadPredictions(ctx context.Context, cfg *config.Config, appLog *logrus.Logger, date time.Time, gameDate string) ([]*models.Prediction, error) {
	if cfg.ArchiveEnabled() {
		if archived, ok := archivedSlate(ctx, cfg, appLog, gameDate); ok {
			return archived, nil
		}
	}

	espn, odds, err := buildFeeds(cfg)
	if err != nil {
		return nil, err
	}
	avail := buildAvailability(cfg, espn, appLog)
	clf := buildClassifier(cfg, appLog)

	store := state.NewStore(cfg.State.Dir)
	predictor := engine.NewSlatePredictor(store, espn, odds, avail, clf, ratingConfig(cfg), appLog)
	if !cfg.Injuries.FallbackOnError {
		predictor.SetRequireFreshAvailability(true)
	}

	report, err := predictor.Predict(ctx, engine.PredictConfig{Date: date})
	if err != nil {
		return nil, fmt.Errorf("predict failed: %w", err)
	}
	return report.Predictions, nil
}

// archivedSlate reads the date's predictions from the archive. Any
// trouble just sends the caller down the fresh-scoring path.
func archivedSlate(ctx context.Context, cfg *config.Config, appLog *logrus.Logger, gameDate string) ([]*models.Prediction, bool) {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.NewDB(dbCtx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Warn("Archive unreachable, scoring the slate fresh")
		return nil, false
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Warn("Archive unreachable, scoring the slate fresh")
		return nil, false
	}

	archived, err := repos.Predictions.GetByDate(dbCtx, gameDate)
	if err != nil {
		appLog.WithError(err).Warn("Archive read failed, scoring the slate fresh")
		return nil, false
	}
	if len(archived) == 0 {
		return nil, false
	}

	appLog.WithFields(logrus.Fields{
		"game_date":   gameDate,
		"predictions": len(archived),
	}).Info("Using archived slate")
	return archived, true
}

func printEdgeBoard(gameDate string, signals []edge.Signal, summary edge.Summary) {
	fmt.Printf("Model-versus-market edges for %s (%d games, %d priced)\n\n",
		gameDate, summary.Games, summary.Priced)

	if len(signals) == 0 {
		fmt.Println("No sides clear the edge floor.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SIDE\tVS\tMODEL\tMARKET\tEDGE\tPRICE\tEV\tSTAKE")
		for _, sig := range signals {
			flag := ""
			if sig.Disagreement {
				flag = " !"
			}
			fmt.Fprintf(w, "%s (%s)\t%s\t%.1f%%\t%.1f%%\t%+.1f%s\t%s\t%s\t%s\n",
				sig.Team, sig.Side, sig.Opponent,
				sig.ModelProb*100, sig.MarketProb*100, sig.Edge*100, flag,
				sig.Price.StringFixed(2), sig.ExpectedValue.StringFixed(2), sig.Stake.StringFixed(2))
		}
		w.Flush()
	}

	fmt.Printf("\nHome-side gap: mean %+.3f, std %.3f, range %+.3f to %+.3f\n",
		summary.MeanEdge, summary.StdDev, summary.MinEdge, summary.MaxEdge)
	if summary.HighDisagreement > 0 {
		fmt.Printf("%d game(s) with model and market more than %.0f points apart\n",
			summary.HighDisagreement, edge.DisagreementThreshold*100)
	}
}

func outputEdgesJSON(signals []edge.Signal, summary edge.Summary) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Signals []edge.Signal `json:"signals"`
		Summary edge.Summary  `json:"summary"`
	}{Signals: signals, Summary: summary})
}
