package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "paygrid",
	Short: "Paygrid - compensation projection service",
	Long: `Paygrid CLI

Projects total compensation over a time horizon by combining base
salary, bonuses and equity grants into aligned monthly series, with
optional inflation restatement against the BLS CPI.

Examples:
  go run ./cmd/paygrid api
  go run ./cmd/paygrid project --plan plan.json`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
