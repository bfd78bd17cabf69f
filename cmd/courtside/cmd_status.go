package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/repository"
	"github.com/yourusername/courtside/internal/state"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine state, classifier and archive status",
	Long: `Report where the engine stands: the stored state's resume point and
lifetime counters, whether the win probability service answers its
health check, and the archive's row counts when one is configured.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// runStatus reports engine, classifier and archive position
func runStatus(cmd *cobra.Command, args []string) error {
	cfg, appLog, err := bootstrap()
	if err != nil {
		return err
	}

	fmt.Printf("courtside %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	fmt.Printf("environment: %s\n", cfg.App.Environment)

	fmt.Printf("\nState (%s)\n", cfg.State.Dir)
	store := state.NewStore(cfg.State.Dir)
	if !store.Exists() {
		fmt.Println("  no state yet; run 'courtside update' to create it")
	} else {
		meta := store.Metadata()
		last, updated := "never", "never"
		if meta.LastProcessedDate != nil {
			last = *meta.LastProcessedDate
		}
		if meta.LastUpdated != nil {
			updated = *meta.LastUpdated
		}
		fmt.Printf("  last processed date: %s\n", last)
		fmt.Printf("  last updated:        %s\n", updated)
		fmt.Printf("  games processed:     %d\n", meta.GamesProcessedTotal)
	}

	fmt.Printf("\nClassifier (%s)\n", cfg.Classifier.URL)
	clf := buildClassifier(cfg, appLog)
	clfCtx, clfCancel := context.WithTimeout(context.Background(), 3*time.Second)
	clfErr := clf.HealthCheck(clfCtx)
	clfCancel()
	if clfErr != nil {
		fmt.Printf("  unreachable: %v\n", clfErr)
	} else {
		fmt.Println("  healthy")
	}

	if !cfg.ArchiveEnabled() {
		fmt.Println("\nArchive")
		fmt.Println("  disabled")
		return nil
	}

	fmt.Printf("\nArchive (%s:%d/%s)\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	db, err := database.NewDB(dbCtx, &cfg.Database)
	if err != nil {
		fmt.Printf("  unreachable: %v\n", err)
		return nil
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		fmt.Printf("  error: %v\n", err)
		return nil
	}

	if games, err := repos.Games.Count(dbCtx); err != nil {
		fmt.Printf("  games archived: %v\n", err)
	} else {
		fmt.Printf("  games archived:       %d\n", games)
	}
	if preds, err := repos.Predictions.Count(dbCtx); err != nil {
		fmt.Printf("  predictions archived: %v\n", err)
	} else {
		fmt.Printf("  predictions archived: %d\n", preds)
	}

	// ISO date strings sort chronologically, so these bounds cover the
	// whole archive.
	tiers, err := repos.Predictions.TierCounts(dbCtx, "0000-01-01", "9999-12-31")
	if err == nil && len(tiers) > 0 {
		fmt.Println("  predictions by tier:")
		order := []string{
			engine.TierHeavyFavorite,
			engine.TierModerateFavorite,
			engine.TierLeanFavorite,
			engine.TierTossUp,
			engine.TierLeanUnderdog,
			engine.TierStrongUnderdog,
		}
		for _, tier := range order {
			if n, ok := tiers[tier]; ok {
				fmt.Printf("    %-18s %d\n", tier, n)
			}
		}
	}

	return nil
}
