// Package party handles the party service inspection commands
package party

import (
	"fmt"

	"fjacquet/payout-report/cmd/root"
	"fjacquet/payout-report/internal/models"
	"fjacquet/payout-report/internal/report"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd represents the party command
var Cmd = &cobra.Command{
	Use:   "party",
	Short: "Query the party service",
	Long:  `Look up a taxable party or its mailing addresses the way report runs do.`,
}

var showCmd = &cobra.Command{
	Use:   "show <partyNumber>",
	Short: "Print the party details as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  showFunc,
}

var addressesCmd = &cobra.Command{
	Use:   "addresses <partyNumber>",
	Short: "Print the preferred and secondary mailing address of a party",
	Args:  cobra.ExactArgs(1),
	RunE:  addressesFunc,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(addressesCmd)
}

func showFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	client := c.GetPartyClient()
	if client == nil {
		return fmt.Errorf("no party service configured (set party.base_url)")
	}

	p, err := client.Party(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return encode(cmd, p)
}

func addressesFunc(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	addresses, err := c.GetResolver().Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	preferred, secondary := models.SelectAddresses(addresses)
	return encode(cmd, map[string]string{
		"preferred": report.FormatAddress(preferred),
		"secondary": report.FormatAddress(secondary),
	})
}

func encode(cmd *cobra.Command, v interface{}) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}
	return enc.Close()
}
