// Package ytd computes year-to-date payout totals from ledger entries.
package ytd

import (
	"strings"
	"time"

	"fjacquet/payout-report/internal/currencyutils"
	"fjacquet/payout-report/internal/dateutils"
	"fjacquet/payout-report/internal/ledger"

	"github.com/shopspring/decimal"
)

// ClosedPayeeStatus is the payee status whose entries never count toward totals.
const ClosedPayeeStatus = "1000500003"

// Deduction fee types.
const (
	FeeTypeFederal = "20"
	FeeTypeState   = "21"
)

// Adjustment field categories.
const (
	CategoryGross    = "0"
	CategoryInterest = "1"
	CategoryFederal  = "2"
	CategoryState    = "3"
)

// Adjustment directions.
const (
	DirectionDebit  = "1"
	DirectionCredit = "2"
)

// Window is an inclusive date range. Only the calendar day of each bound matters.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls on or between the start and end days.
func (w Window) Contains(t time.Time) bool {
	return dateutils.CompareDates(t, w.Start) >= 0 && dateutils.CompareDates(t, w.End) <= 0
}

// Totals are the aggregated amounts for one payee.
type Totals struct {
	Gross    decimal.Decimal
	Federal  decimal.Decimal
	State    decimal.Decimal
	Interest decimal.Decimal
}

// Aggregate sums the gross amount, withheld taxes and adjustments of every
// qualifying entry. An entry qualifies when it has a due date inside w, is not
// reversed and its payee is not closed.
func Aggregate(entries []ledger.Entry, w Window) Totals {
	t := Totals{
		Gross:    decimal.Zero,
		Federal:  decimal.Zero,
		State:    decimal.Zero,
		Interest: decimal.Zero,
	}

	for _, e := range entries {
		if !qualifies(e, w) {
			continue
		}

		t.Gross = t.Gross.Add(currencyutils.OrZero(e.GrossAmt))

		for _, d := range e.Deductions {
			amount := currencyutils.OrZero(d.Amount)
			switch strings.TrimSpace(d.FeeType) {
			case FeeTypeFederal:
				t.Federal = t.Federal.Add(amount)
			case FeeTypeState:
				t.State = t.State.Add(amount)
			}
		}

		for _, a := range e.Adjustments {
			value, ok := signed(a)
			if !ok {
				continue
			}
			switch strings.TrimSpace(a.FieldCategory) {
			case CategoryGross:
				t.Gross = t.Gross.Add(value)
			case CategoryInterest:
				t.Interest = t.Interest.Add(value)
			case CategoryFederal:
				t.Federal = t.Federal.Add(value)
			case CategoryState:
				t.State = t.State.Add(value)
			}
		}
	}
	return t
}

func qualifies(e ledger.Entry, w Window) bool {
	if e.DueDate == nil || e.Reversed {
		return false
	}
	if strings.TrimSpace(e.PayeeStatus) == ClosedPayeeStatus {
		return false
	}
	return w.Contains(*e.DueDate)
}

// signed returns the adjustment value with its direction applied. Unknown
// directions are ignored.
func signed(a ledger.Adjustment) (decimal.Decimal, bool) {
	value := currencyutils.OrZero(a.Value)
	switch strings.TrimSpace(a.Direction) {
	case DirectionCredit:
		return value, true
	case DirectionDebit:
		return value.Neg(), true
	default:
		return decimal.Zero, false
	}
}
