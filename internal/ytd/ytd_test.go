package ytd

import (
	"testing"
	"time"

	"fjacquet/payout-report/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func money(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func year2024() Window {
	return Window{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
	}
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestAggregate_EndToEndScenario(t *testing.T) {
	entries := []ledger.Entry{{
		ID:       1,
		DueDate:  date(2024, 6, 1),
		GrossAmt: money("1000"),
		Deductions: []ledger.Deduction{
			{FeeType: "20", Amount: money("50")},
			{FeeType: "21", Amount: money("25")},
		},
	}}

	got := Aggregate(entries, year2024())

	assertAmount(t, "1000", got.Gross)
	assertAmount(t, "50", got.Federal)
	assertAmount(t, "25", got.State)
	assertAmount(t, "0", got.Interest)
}

func TestAggregate_Idempotent(t *testing.T) {
	entries := []ledger.Entry{
		{ID: 1, DueDate: date(2024, 2, 1), GrossAmt: money("10.10")},
		{ID: 2, DueDate: date(2024, 3, 1), GrossAmt: money("20.20"),
			Adjustments: []ledger.Adjustment{{FieldCategory: "1", Direction: "2", Value: money("0.5")}}},
	}

	first := Aggregate(entries, year2024())
	second := Aggregate(entries, year2024())

	assert.True(t, first.Gross.Equal(second.Gross))
	assert.True(t, first.Interest.Equal(second.Interest))
	assertAmount(t, "30.30", first.Gross)
}

func TestAggregate_AdjustmentSignLaw(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		direction string
		check     func(Totals) decimal.Decimal
		want      string
	}{
		{name: "gross credit", category: "0", direction: "2", check: func(t Totals) decimal.Decimal { return t.Gross }, want: "107"},
		{name: "gross debit", category: "0", direction: "1", check: func(t Totals) decimal.Decimal { return t.Gross }, want: "93"},
		{name: "interest credit", category: "1", direction: "2", check: func(t Totals) decimal.Decimal { return t.Interest }, want: "7"},
		{name: "interest debit", category: "1", direction: "1", check: func(t Totals) decimal.Decimal { return t.Interest }, want: "-7"},
		{name: "federal credit", category: "2", direction: "2", check: func(t Totals) decimal.Decimal { return t.Federal }, want: "7"},
		{name: "federal debit", category: "2", direction: "1", check: func(t Totals) decimal.Decimal { return t.Federal }, want: "-7"},
		{name: "state credit padded", category: " 3 ", direction: " 2", check: func(t Totals) decimal.Decimal { return t.State }, want: "7"},
		{name: "state debit", category: "3", direction: "1", check: func(t Totals) decimal.Decimal { return t.State }, want: "-7"},
		{name: "unknown direction", category: "0", direction: "9", check: func(t Totals) decimal.Decimal { return t.Gross }, want: "100"},
		{name: "unknown category", category: "8", direction: "2", check: func(t Totals) decimal.Decimal { return t.Gross }, want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := []ledger.Entry{{
				ID:          1,
				DueDate:     date(2024, 5, 5),
				GrossAmt:    money("100"),
				Adjustments: []ledger.Adjustment{{FieldCategory: tt.category, Direction: tt.direction, Value: money("7")}},
			}}
			assertAmount(t, tt.want, tt.check(Aggregate(entries, year2024())))
		})
	}
}

func TestAggregate_WindowBoundaries(t *testing.T) {
	w := Window{
		Start: time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC),
	}
	tests := []struct {
		name string
		due  *time.Time
		want string
	}{
		{name: "start day", due: date(2024, 1, 1), want: "1"},
		{name: "end day late clock", due: func() *time.Time { t := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC); return &t }(), want: "1"},
		{name: "day before start", due: date(2023, 12, 31), want: "0"},
		{name: "day after end", due: date(2024, 4, 1), want: "0"},
		{name: "no due date", due: nil, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := []ledger.Entry{{ID: 1, DueDate: tt.due, GrossAmt: money("1")}}
			assertAmount(t, tt.want, Aggregate(entries, w).Gross)
		})
	}
}

func TestAggregate_FeeRouting(t *testing.T) {
	entries := []ledger.Entry{{
		ID:      1,
		DueDate: date(2024, 7, 4),
		Deductions: []ledger.Deduction{
			{FeeType: "20", Amount: money("1.25")},
			{FeeType: " 20", Amount: money("0.75")},
			{FeeType: "21", Amount: money("3")},
			{FeeType: "99", Amount: money("1000")},
			{FeeType: "21", Amount: decimal.NullDecimal{}},
		},
	}}

	got := Aggregate(entries, year2024())

	assertAmount(t, "2", got.Federal)
	assertAmount(t, "3", got.State)
	assertAmount(t, "0", got.Gross)
}

func TestAggregate_SkipsClosedAndReversed(t *testing.T) {
	entries := []ledger.Entry{
		{ID: 1, DueDate: date(2024, 1, 2), GrossAmt: money("5"), PayeeStatus: ClosedPayeeStatus},
		{ID: 2, DueDate: date(2024, 1, 2), GrossAmt: money("7"), Reversed: true},
		{ID: 3, DueDate: date(2024, 1, 2), GrossAmt: money("11"), PayeeStatus: "1000500001"},
		{ID: 4, DueDate: date(2024, 1, 2)},
	}

	assertAmount(t, "11", Aggregate(entries, year2024()).Gross)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, year2024())
	assert.True(t, got.Gross.IsZero())
	assert.True(t, got.Federal.IsZero())
	assert.True(t, got.State.IsZero())
	assert.True(t, got.Interest.IsZero())
}
