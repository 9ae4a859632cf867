// Package cli implements the EcoPlus command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ecoplus",
	Short: "EcoPlus: gamified sustainability tracker",
	Long: `EcoPlus rewards sustainable habits with points, streaks, and badges.

Run 'ecoplus serve' to start the API, or use the admin commands below to
seed the question bank and inspect engagement state.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
