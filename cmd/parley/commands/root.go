package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "AFB Parley - NFL matchup signal and parlay analysis",
	Long: `AFB Parley Unified CLI

Turns per-agent matchup signals into findings, alerts, correlated
scripts, and risk-tiered ladders, with reproducible provenance on
every run.

Usage:
  go run ./cmd/parley [command]

Examples:
  go run ./cmd/parley api
  go run ./cmd/parley analyze --stats game.json --home "Buffalo Bills" --away "Miami Dolphins"
  go run ./cmd/parley scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
