// Package report handles the report generation command
package report

import (
	"fmt"
	"time"

	"fjacquet/payout-report/cmd/root"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/report"
	"fjacquet/payout-report/internal/validation"

	"github.com/spf13/cobra"
)

var (
	output string
	format string
)

// Cmd represents the report command
var Cmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the periodic payout YTD report",
	Long:  `Generate one row per periodic payout transaction in the report window and write it as CSV (or JSON).`,
	RunE:  reportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default transaction_history_periodic_payout_report_<timestamp>.csv)")
	Cmd.Flags().StringVarP(&format, "format", "f", report.FormatCSV, "Output format: csv or json")
}

func reportFunc(cmd *cobra.Command, args []string) error {
	if err := validation.IsValidOutputFormat(format); err != nil {
		return err
	}
	now := time.Now()
	path := output
	if path == "" {
		path = report.ReportFileName(now)
	}
	if err := validation.IsValidOutputPath(path); err != nil {
		return err
	}

	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	window, err := c.Window(now)
	if err != nil {
		return err
	}

	result, err := c.GetRunner().Run(cmd.Context(), window)
	if err != nil {
		return fmt.Errorf("error generating report: %w", err)
	}

	if err := c.GetGenerator().WriteFile(path, result.Rows, format); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}

	root.Log.Info("Report written",
		logging.F(logging.FieldOutputFile, path),
		logging.F(logging.FieldCount, result.Stats.Total),
		logging.F("decode_errors", result.Stats.DecodeErrors),
		logging.F("correlation_errors", result.Stats.CorrelationErrors),
		logging.F("address_errors", result.Stats.AddressErrors))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
