package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/daemon"
	"github.com/ecoplus-hub/ecoplus/internal/domain"
)

func init() {
	badgesCmd.Flags().StringVar(&badgesCheckUser, "check", "", "Re-evaluate activity badges for USER_ID and grant any earned")
	rootCmd.AddCommand(badgesCmd)
}

var badgesCheckUser string

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List the badge catalog",
	Args:  cobra.NoArgs,
	RunE:  runBadges,
}

func runBadges(cmd *cobra.Command, args []string) error {
	if badgesCheckUser != "" {
		return runBadgeCheck(cmd, badgesCheckUser)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBADGE\tDESCRIPTION")
	for _, b := range engagement.Catalog() {
		fmt.Fprintf(w, "%d\t%s %s\t%s\n", b.ID, b.Icon, b.Name, b.Description)
	}
	return w.Flush()
}

func runBadgeCheck(cmd *cobra.Command, userID string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	if _, err := d.Accounts.Get(ctx, userID); err != nil {
		return err
	}
	earned, err := d.Badges.Evaluate(ctx, userID, domain.EventContext{Type: domain.EventActivity})
	if err != nil {
		return err
	}
	if len(earned) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No new badges.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Granted: %s\n", strings.Join(earned, ", "))
	return nil
}
