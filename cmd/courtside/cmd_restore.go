package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/courtside/internal/engine"
	"github.com/yourusername/courtside/internal/state"
)

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Roll state back to the last backup",
	Long: `Replace the current rating and form files with the .json.bak siblings
written by the most recent successful save. Use after a bad update run,
then re-run the update.`,
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

// runRestore rolls the state files back to their backups
func runRestore(cmd *cobra.Command, args []string) error {
	cfg, appLog, err := bootstrap()
	if err != nil {
		return err
	}

	store := state.NewStore(cfg.State.Dir)
	pipeline := engine.NewUpdatePipeline(store, nil, ratingConfig(cfg), appLog)

	restored, err := pipeline.RestoreBackup()
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	if !restored {
		fmt.Println("No complete backup pair found; state unchanged.")
		return nil
	}

	fmt.Printf("State restored from backups under %s.\n", cfg.State.Dir)
	return nil
}
