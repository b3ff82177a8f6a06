// Package check handles the startup self-check command
package check

import (
	"fmt"
	"time"

	"fjacquet/payout-report/cmd/root"
	"fjacquet/payout-report/internal/codes"
	"fjacquet/payout-report/internal/dateutils"

	"github.com/spf13/cobra"
)

// Cmd represents the check command
var Cmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the code tables, the database and the report window",
	Long: `Load every code table, ping the database and resolve the report window,
printing what a report run would use.`,
	RunE: checkFunc,
}

func checkFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	reg := c.GetRegistry()
	for _, d := range codes.Domains() {
		fmt.Fprintf(out, "codes %-16s %d\n", d, reg.Size(d))
	}

	if err := c.GetStore().Ping(cmd.Context()); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	fmt.Fprintf(out, "database         %s ok\n", c.GetConfig().Database.Driver)

	window, err := c.Window(time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "window           %s - %s\n", dateutils.FormatUS(window.Start), dateutils.FormatUS(window.End))

	if c.GetPartyClient() == nil {
		fmt.Fprintln(out, "party service    not configured")
	} else {
		fmt.Fprintf(out, "party service    %s\n", c.GetConfig().Party.BaseURL)
	}
	return nil
}
