package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoplus-hub/ecoplus/internal/daemon"
)

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Replace the existing question bank")
	rootCmd.AddCommand(seedCmd)
}

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled quiz question bank",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	n, err := d.Quiz.Seed(cmd.Context(), seedReset)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Question bank already seeded. Use --reset to replace it.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d questions.\n", n)
	return nil
}
