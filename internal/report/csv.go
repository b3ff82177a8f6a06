package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes the header and rows to w. Error marker rows are written as a
// single cell in place.
func WriteCSV(w io.Writer, rows []Row, delimiter rune) error {
	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	out := gocsv.NewSafeCSVWriter(csvWriter)

	if err := gocsv.MarshalCSV([]Row{}, out); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	pending := make([]Row, 0, len(rows))
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := gocsv.MarshalCSVWithoutHeaders(pending, out); err != nil {
			return fmt.Errorf("error writing CSV data: %w", err)
		}
		pending = pending[:0]
		return nil
	}

	for _, r := range rows {
		if !r.Failed {
			pending = append(pending, r)
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		if err := out.Write(r.Values()); err != nil {
			return fmt.Errorf("error writing CSV data: %w", err)
		}
	}
	if err := flush(); err != nil {
		return err
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("error flushing CSV data: %w", err)
	}
	return nil
}
