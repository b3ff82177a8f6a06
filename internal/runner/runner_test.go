package runner

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"fjacquet/payout-report/internal/codes"
	"fjacquet/payout-report/internal/ledger"
	"fjacquet/payout-report/internal/ledger/ledgertest"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/metrics"
	"fjacquet/payout-report/internal/models"
	"fjacquet/payout-report/internal/party"
	"fjacquet/payout-report/internal/report"
	"fjacquet/payout-report/internal/reporterror"
	"fjacquet/payout-report/internal/ytd"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const imagePOL1 = `{
  "polNumber": "POL-1",
  "transRunDate": "2024-08-15",
  "transExeDate": "2024-08-14",
  "suspendCode": "0",
  "payeePayouts": [{"taxablePartyNumber": "TP-1", "taxablePartyName": "Jane Roe", "payeeStatus": "1000500001"}]
}`

const imagePOL2 = `{
  "polNumber": "POL-2",
  "transRunDate": "2024-08-15",
  "transExeDate": "2024-08-14",
  "payeePayouts": [{"taxablePartyNumber": "TP-9"}]
}`

type fakeTransactions struct {
	records []models.TransactionRecord
	err     error
}

func (f fakeTransactions) Transactions(_ context.Context, _, _ time.Time) ([]models.TransactionRecord, error) {
	return f.records, f.err
}

type fakeProducts map[string]models.ProductInfo

func (f fakeProducts) ProductInfo(_ context.Context, numbers []string) (map[string]models.ProductInfo, error) {
	out := make(map[string]models.ProductInfo)
	for _, n := range numbers {
		if info, ok := f[n]; ok {
			out[n] = info
		}
	}
	return out, nil
}

type failingResolver struct{}

func (failingResolver) Resolve(_ context.Context, partyNumber string) ([]models.Address, error) {
	return nil, &reporterror.PartyError{PartyNumber: partyNumber, Err: errors.New("connection refused")}
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func strPtr(s string) *string { return &s }

var window = ytd.Window{
	Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
}

func ledgerFixture() *ledgertest.Store {
	return &ledgertest.Store{
		Policies:  []ledgertest.Policy{{ID: 1, Number: "POL-1", Status: "1", PayoutID: 10}},
		PayeeRows: []ledger.Payee{{ID: 100, PolicyPayoutID: 10, PayeePartyNumber: "TP-1"}},
		Entries: []ledger.Entry{
			{ID: 5, PayeeID: 100, PayeePartyNumber: "TP-1", TaxablePartyNumber: "TP-1",
				TransExeDate: day(2024, 2, 1), DueDate: day(2024, 2, 1), GrossAmt: amount("1000")},
		},
		DeductionRows: []ledger.Deduction{
			{ID: 1, EntryID: 5, FeeType: ytd.FeeTypeFederal, Amount: amount("50")},
			{ID: 2, EntryID: 5, FeeType: ytd.FeeTypeState, Amount: amount("25")},
		},
	}
}

func prefAddress() models.Address {
	return models.Address{PrefAddr: true, Line1: strPtr("1 Main St"), Zip: strPtr("10001")}
}

func newDeps(t *testing.T) Deps {
	t.Helper()
	logger := logging.NewMockLogger()
	registry, err := codes.Load(codes.EmbeddedTables(), logger)
	require.NoError(t, err)

	return Deps{
		Transactions: fakeTransactions{records: []models.TransactionRecord{
			{ID: 1, MessageImage: []byte(imagePOL1)},
			{ID: 2, MessageImage: []byte("{not json")},
			{ID: 3, MessageImage: []byte(imagePOL2)},
		}},
		Products: fakeProducts{"POL-1": {PolNumber: "POL-1", ManagementCode: "MC1", ProductCode: "PC1"}},
		Ledger:   ledgerFixture(),
		Parties:  party.StaticResolver{"TP-1": {prefAddress()}},
		Registry: registry,
		Logger:   logger,
		Workers:  2,
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	full := newDeps(t)
	tests := []struct {
		name   string
		mutate func(d *Deps)
	}{
		{"transaction", func(d *Deps) { d.Transactions = nil }},
		{"product", func(d *Deps) { d.Products = nil }},
		{"ledger", func(d *Deps) { d.Ledger = nil }},
		{"registry", func(d *Deps) { d.Registry = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := full
			tt.mutate(&d)
			_, err := New(d)
			assert.ErrorContains(t, err, tt.name)
		})
	}

	r, err := New(full)
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestRun_BuildsOneRowPerTransaction(t *testing.T) {
	r, err := New(newDeps(t))
	require.NoError(t, err)

	result, err := r.Run(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)

	first := result.Rows[0]
	assert.False(t, first.Failed)
	assert.Equal(t, "2024", first.RunYear)
	assert.Equal(t, "POL-1", first.PolNumber)
	assert.Equal(t, "MC1", first.ManagementCode)
	assert.Equal(t, "PC1", first.ProductCode)
	assert.Equal(t, "TP-1", first.PartyID)
	assert.Equal(t, "Jane Roe", first.PartyFullName)
	assert.Equal(t, prefAddress().String(), first.PreferredMailingAddress)
	assert.Empty(t, first.MailingAddress)
	assert.Equal(t, "$1,000.00", first.YTDGross)
	assert.Equal(t, "$50.00", first.YTDFederal)
	assert.Equal(t, "$25.00", first.YTDState)

	assert.Equal(t, report.ErrorRow(), result.Rows[1])

	third := result.Rows[2]
	assert.Equal(t, "POL-2", third.PolNumber)
	assert.Empty(t, third.ManagementCode)
	assert.Equal(t, "$0.00", third.YTDGross)

	assert.Equal(t, Stats{Total: 3, DecodeErrors: 1}, result.Stats)
	assert.Equal(t, window, result.Window)
}

func TestRun_NoTransactions(t *testing.T) {
	d := newDeps(t)
	d.Transactions = fakeTransactions{}
	r, err := New(d)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), window)
	assert.ErrorIs(t, err, reporterror.ErrNoData)
}

func TestRun_SourceErrorsAbortTheRun(t *testing.T) {
	d := newDeps(t)
	d.Transactions = fakeTransactions{err: errors.New("db down")}
	r, err := New(d)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), window)
	assert.ErrorContains(t, err, "db down")
	assert.NotErrorIs(t, err, reporterror.ErrNoData)
}

func TestRun_RowLocalFailuresAreCounted(t *testing.T) {
	d := newDeps(t)
	store := ledgerFixture()
	store.Err = errors.New("timeout")
	store.ErrStep = ledger.StepHistory
	d.Ledger = store
	d.Parties = failingResolver{}
	d.Metrics = metrics.New()

	r, err := New(d)
	require.NoError(t, err)

	result, err := r.Run(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)

	assert.Equal(t, Stats{Total: 3, DecodeErrors: 1, CorrelationErrors: 1, AddressErrors: 2}, result.Stats)
	first := result.Rows[0]
	assert.Equal(t, "$0.00", first.YTDGross)
	assert.Empty(t, first.PreferredMailingAddress)

	rec := httptest.NewRecorder()
	d.Metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "payout_report_rows_total 3")
	assert.Contains(t, string(body), `row_errors_total{kind="decode"} 1`)
	assert.Contains(t, string(body), `row_errors_total{kind="address"} 2`)
}

func TestRun_CancelledContext(t *testing.T) {
	r, err := New(newDeps(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, window)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMessageImages_KeyedByTransactionID(t *testing.T) {
	r, err := New(newDeps(t))
	require.NoError(t, err)

	images, err := r.MessageImages(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.JSONEq(t, imagePOL1, string(images["1"]))
	assert.JSONEq(t, imagePOL2, string(images["3"]))
	assert.NotContains(t, images, "2")
}

func TestMessageImages_NoTransactions(t *testing.T) {
	d := newDeps(t)
	d.Transactions = fakeTransactions{}
	r, err := New(d)
	require.NoError(t, err)

	_, err = r.MessageImages(context.Background(), window)
	assert.ErrorIs(t, err, reporterror.ErrNoData)
}
