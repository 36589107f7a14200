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
	Use:   "vigil",
	Short: "Vigil - athlete fatigue monitoring backend",
	Long: `Vigil Unified CLI

Fatigue flagging backend for countermovement jump (CMJ) testing.
Imports force-plate test events, computes per-athlete and team
baselines, and flags athletes whose latest tests fall below the
configured thresholds.

Usage:
  go run ./cmd/vigil [command]

Examples:
  go run ./cmd/vigil run
  go run ./cmd/vigil import testdata/part4.csv
  go run ./cmd/vigil api
  go run ./cmd/vigil scheduler start`,
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
