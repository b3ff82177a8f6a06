package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fjacquet/payout-report/internal/dateutils"
	"fjacquet/payout-report/internal/logging"
)

// Output formats supported by Generator.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// File names of generated artifacts.
const (
	ReportFilePrefix      = "transaction_history_periodic_payout_report_"
	MessageImagesFileName = "message_images.json"
)

// ReportFileName returns the report file name for a run started at t.
func ReportFileName(t time.Time) string {
	return ReportFilePrefix + dateutils.Timestamp(t) + ".csv"
}

// Generator renders report rows and message images.
type Generator struct {
	logger    logging.Logger
	delimiter rune
}

// NewGenerator creates a Generator writing CSV with delimiter.
func NewGenerator(logger logging.Logger, delimiter rune) *Generator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if delimiter == 0 {
		delimiter = ','
	}
	return &Generator{logger: logger.WithField(logging.FieldComponent, "report"), delimiter: delimiter}
}

// GenerateReport renders rows in the given format (csv or json).
func (g *Generator) GenerateReport(rows []Row, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.Write(&buf, rows, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders rows in format to w.
func (g *Generator) Write(w io.Writer, rows []Row, format string) error {
	switch format {
	case FormatCSV, "":
		if err := WriteCSV(w, rows, g.delimiter); err != nil {
			g.logger.WithError(err).Error("Failed to write CSV report")
			return err
		}
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			g.logger.WithError(err).Error("Failed to marshal JSON report")
			return fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
}

// WriteMessageImages writes the images keyed by transaction id as indented JSON.
func (g *Generator) WriteMessageImages(w io.Writer, images map[string]json.RawMessage) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(images); err != nil {
		g.logger.WithError(err).Error("Failed to marshal message images")
		return fmt.Errorf("failed to marshal message images: %w", err)
	}
	return nil
}

// WriteFile renders rows to path, creating parent directories.
func (g *Generator) WriteFile(path string, rows []Row, format string) error {
	return g.writeFile(path, func(w io.Writer) error { return g.Write(w, rows, format) })
}

// WriteMessageImagesFile writes the images to path.
func (g *Generator) WriteMessageImagesFile(path string, images map[string]json.RawMessage) error {
	return g.writeFile(path, func(w io.Writer) error { return g.WriteMessageImages(w, images) })
}

func (g *Generator) writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	file, err := os.Create(path) // #nosec G304 -- output path chosen by the operator
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			g.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	if err := write(file); err != nil {
		return err
	}
	g.logger.Info("Wrote output file", logging.F(logging.FieldOutputFile, path))
	return nil
}
