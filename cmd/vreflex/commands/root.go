package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vreflex",
	Short: "vreflex - daily VRE penetration and flexibility metrics",
	Long: `vreflex CLI

Daily renewable-penetration and grid-flexibility metrics for the Spanish
electricity system, computed from the local store or the REE ESIOS API.

Usage:
  go run ./cmd/vreflex [command]

Examples:
  go run ./cmd/vreflex migrate
  go run ./cmd/vreflex load 2024-01-01 2024-12-31 --indicator 1293
  go run ./cmd/vreflex summary 2024-04-15
  go run ./cmd/vreflex api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
