package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/payout-report/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_HeaderAndRows(t *testing.T) {
	rows := []Row{
		{RunYear: "2024", PolNumber: "POL-1", YTDGross: "$1,000.00"},
		ErrorRow(),
		{RunYear: "2024", PolNumber: "POL-2", MailingAddress: "Line 1: a, b"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows, ','))

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, Headers(), records[0])
	assert.Equal(t, "POL-1", records[1][5])
	assert.Equal(t, "$1,000.00", records[1][19])
	assert.Equal(t, []string{ErrorRowText}, records[2])
	assert.Equal(t, "Line 1: a, b", records[3][18])
}

func TestWriteCSV_EmptyWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, ';'))
	assert.Equal(t, strings.Join(Headers(), ";")+"\n", buf.String())
}

func TestGenerator_Formats(t *testing.T) {
	g := NewGenerator(logging.NewMockLogger(), 0)
	rows := []Row{{PolNumber: "POL-1"}}

	out, err := g.GenerateReport(rows, FormatJSON)
	require.NoError(t, err)
	var decoded []Row
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, rows, decoded)

	out, err = g.GenerateReport(rows, FormatCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "runYear,transRunDate"))

	_, err = g.GenerateReport(rows, "xml")
	assert.EqualError(t, err, "unsupported report format: xml")
}

func TestGenerator_WriteFiles(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(logging.NewMockLogger(), ',')

	reportPath := filepath.Join(dir, "nested", "report.csv")
	require.NoError(t, g.WriteFile(reportPath, []Row{{PolNumber: "POL-1"}}, FormatCSV))
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "POL-1")

	imagesPath := filepath.Join(dir, MessageImagesFileName)
	images := map[string]json.RawMessage{"42": json.RawMessage(`{"polNumber":"POL-1"}`)}
	require.NoError(t, g.WriteMessageImagesFile(imagesPath, images))
	data, err = os.ReadFile(imagesPath)
	require.NoError(t, err)

	var decoded map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "POL-1", decoded["42"]["polNumber"])
}

func TestReportFileName(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC)
	assert.Equal(t, "transaction_history_periodic_payout_report_03-07-2024_090501.csv", ReportFileName(ts))
}
