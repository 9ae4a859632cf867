package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecoplus-hub/ecoplus/internal/daemon"
)

func init() {
	rootCmd.AddCommand(streakCmd)
}

var streakCmd = &cobra.Command{
	Use:   "streak USER_ID",
	Short: "Show a user's streak, points, and badges",
	Args:  cobra.ExactArgs(1),
	RunE:  runStreak,
}

func runStreak(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	u, err := d.Accounts.Get(ctx, args[0])
	if err != nil {
		return err
	}
	res, err := d.Streak.Current(ctx, u.ID)
	if err != nil {
		return err
	}

	last := "never"
	if res.LastActiveDate != nil {
		last = res.LastActiveDate.String()
	}
	badges := "none"
	if len(u.Badges) > 0 {
		badges = strings.Join(u.Badges, ", ")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User:         %s (%s)\n", u.FullName, u.ID)
	fmt.Fprintf(out, "Streak:       %d\n", res.Streak)
	fmt.Fprintf(out, "Last active:  %s\n", last)
	fmt.Fprintf(out, "Points:       %d\n", u.Points)
	fmt.Fprintf(out, "Badges:       %s\n", badges)

	return nil
}
