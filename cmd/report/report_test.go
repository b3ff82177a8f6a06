package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"fjacquet/payout-report/cmd/images"
	"fjacquet/payout-report/cmd/report"
	"fjacquet/payout-report/cmd/root"
	"fjacquet/payout-report/internal/reporterror"
	"fjacquet/payout-report/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messageImage = `{
  "polNumber": "POL-1",
  "transRunDate": "2024-08-15",
  "transExeDate": "2024-08-14",
  "suspendCode": "0",
  "payeePayouts": [{"taxablePartyNumber": "TP-1", "taxablePartyName": "Jane Roe"}]
}`

var register sync.Once

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// setup seeds a SQLite database in a fresh working directory and points the
// configuration at it.
func setup(t *testing.T) string {
	t.Helper()
	register.Do(func() {
		root.Init()
		root.Cmd.AddCommand(report.Cmd)
		root.Cmd.AddCommand(images.Cmd)
	})

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))

	dbPath := filepath.Join(dir, "payout.db")
	t.Setenv("PAYOUT_LOG_LEVEL", "error")
	t.Setenv("PAYOUT_DATABASE_DRIVER", store.DriverSQLite)
	t.Setenv("PAYOUT_DATABASE_DSN", dbPath)
	t.Setenv("PAYOUT_PARTY_BASE_URL", "")

	t.Cleanup(func() {
		assert.NoError(t, root.Close())
		root.SharedFlags = root.CommonFlags{}
		require.NoError(t, os.Chdir(originalDir))
	})

	db, err := store.Open(store.Config{Driver: store.DriverSQLite, DSN: dbPath})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(store.Tables()...))
	require.NoError(t, db.Create(&store.TransactionHistory{
		ID: 1, EntityType: store.EntityTypePolicy, RequestName: store.RequestNamePeriodicPayout,
		TransExeDate: day(2024, 8, 14), TransEffDate: day(2024, 8, 1), MessageImage: messageImage,
	}).Error)
	require.NoError(t, db.Create(&store.Policy{ID: 1, PolNumber: "POL-1", PolicyStatus: "1", ManagementCode: "MC1"}).Error)
	require.NoError(t, db.Create(&store.PolicyPayout{ID: 10, PolicyID: 1}).Error)
	require.NoError(t, db.Create(&store.PayoutPayee{ID: 100, PolicyPayoutID: 10, PayeePartyNumber: "TP-1"}).Error)
	require.NoError(t, db.Create(&store.PayoutPaymentHistory{
		ID: 5, PayoutPayeeID: 100, PayeePartyNumber: "TP-1", TaxablePartyNumber: "TP-1",
		PayoutDueDate: day(2024, 2, 1), TransExeDate: day(2024, 2, 1), GrossAmt: amount("1000"),
	}).Error)
	require.NoError(t, db.Create(&[]store.PayoutPaymentHistoryDeduction{
		{ID: 1, PayoutPaymentHistoryID: 5, FeeType: "20", FeeAmt: amount("50")},
		{ID: 2, PayoutPaymentHistoryID: 5, FeeType: "21", FeeAmt: amount("25")},
	}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root.Cmd.SetOut(&out)
	root.Cmd.SetArgs(args)
	err := root.Cmd.Execute()
	return out.String(), err
}

func TestReportCommand_WritesCSV(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "out", "report.csv")

	stdout, err := execute(t, "report", "--start", "2024-01-01", "--end", "2024-12-31T23:59:59", "-o", path)
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(stdout))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "runYear,"))
	assert.Contains(t, lines[1], "POL-1")
	assert.Contains(t, lines[1], "Active")
	assert.Contains(t, lines[1], "Jane Roe")
	assert.True(t, strings.HasSuffix(lines[1], `"$1,000.00",$50.00,$25.00`), lines[1])
}

func TestReportCommand_NoData(t *testing.T) {
	setup(t)

	_, err := execute(t, "report", "--start", "2020-01-01", "--end", "2020-12-31")
	assert.ErrorIs(t, err, reporterror.ErrNoData)
}

func TestImagesCommand_WritesExport(t *testing.T) {
	dir := setup(t)
	path := filepath.Join(dir, "images.json")

	_, err := execute(t, "images", "--start", "2024-01-01", "--end", "2024-12-31", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"1": {`)
	assert.Contains(t, string(data), `"polNumber": "POL-1"`)
}
