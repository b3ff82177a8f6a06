// Package codes handles the code table inspection commands
package codes

import (
	"fmt"

	"fjacquet/payout-report/cmd/root"
	"fjacquet/payout-report/internal/codes"
	"fjacquet/payout-report/internal/container"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Cmd represents the codes command
var Cmd = &cobra.Command{
	Use:   "codes",
	Short: "Inspect the business code tables",
	Long:  `Translate a single code or dump a code table without touching the database.`,
}

var translateCmd = &cobra.Command{
	Use:   "translate <domain> <code>",
	Short: "Print the display text of a code",
	Args:  cobra.ExactArgs(2),
	RunE:  translateFunc,
}

var dumpCmd = &cobra.Command{
	Use:   "dump [domain]",
	Short: "Print a code table as YAML (every table when no domain is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  dumpFunc,
}

func init() {
	Cmd.AddCommand(translateCmd)
	Cmd.AddCommand(dumpCmd)
}

func loadRegistry() (*codes.Registry, error) {
	cfg := root.GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return codes.Load(container.CodeTables(cfg), root.Log)
}

func translateFunc(cmd *cobra.Command, args []string) error {
	domain, err := codes.ParseDomain(args[0])
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	display, _ := reg.Lookup(domain, args[1])
	fmt.Fprintln(cmd.OutOrStdout(), display)
	return nil
}

func dumpFunc(cmd *cobra.Command, args []string) error {
	domains := codes.Domains()
	if len(args) == 1 {
		domain, err := codes.ParseDomain(args[0])
		if err != nil {
			return err
		}
		domains = []codes.Domain{domain}
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	out := make(map[string][]codes.Entry, len(domains))
	for _, d := range domains {
		out[string(d)] = reg.Table(d)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("error encoding code tables: %w", err)
	}
	return enc.Close()
}
