// Package main provides the entry point for the Courtside prediction engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information. Populated at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var configPath string

// rootCmd is the base command for the Courtside CLI
var rootCmd = &cobra.Command{
	Use:   "courtside",
	Short: "Courtside NBA win prediction engine",
	Long: `Courtside maintains durable Elo ratings and rolling team form from
completed NBA games and scores upcoming slates through a win probability
service, with market odds and player availability folded in.

State lives in plain JSON files; every command reads and writes the same
state directory, so runs compose:

  courtside update              # fold yesterday's finals into the ratings
  courtside predict             # score today's slate
  courtside status              # show state and archive position
  courtside serve               # run the scheduled daemon`,
	Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "Path to the configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
