// Package images handles the message image export command
package images

import (
	"fmt"
	"time"

	"fjacquet/payout-report/cmd/root"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/report"
	"fjacquet/payout-report/internal/validation"

	"github.com/spf13/cobra"
)

var output string

// Cmd represents the images command
var Cmd = &cobra.Command{
	Use:   "images",
	Short: "Export the raw message images of the report window",
	Long:  `Write the stored message image of every transaction in the report window as one JSON object keyed by transaction id.`,
	RunE:  imagesFunc,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", report.MessageImagesFileName, "Output file")
}

func imagesFunc(cmd *cobra.Command, args []string) error {
	if err := validation.IsValidOutputPath(output); err != nil {
		return err
	}

	c, err := root.GetContainer()
	if err != nil {
		return err
	}

	window, err := c.Window(time.Now())
	if err != nil {
		return err
	}

	images, err := c.GetRunner().MessageImages(cmd.Context(), window)
	if err != nil {
		return fmt.Errorf("error exporting message images: %w", err)
	}
	if err := c.GetGenerator().WriteMessageImagesFile(output, images); err != nil {
		return fmt.Errorf("error writing message images: %w", err)
	}

	root.Log.Info("Message images written",
		logging.F(logging.FieldOutputFile, output),
		logging.F(logging.FieldCount, len(images)))
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
