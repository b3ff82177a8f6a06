// Package ledger resolves a policy/payee pair to its payout payment history.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ExcludedPolicyStatuses are the soft-deleted, terminated and home-office
// cancelled statuses never reported on.
var ExcludedPolicyStatuses = []string{"R", "14", "13"}

// Entry is one payout payment history row with its line items.
type Entry struct {
	ID                 int64
	PayeeID            int64
	PayeePartyNumber   string
	TaxablePartyNumber string
	DueDate            *time.Time
	TransExeDate       *time.Time
	GrossAmt           decimal.NullDecimal
	Reversed           bool
	PayeeStatus        string

	Deductions  []Deduction
	Adjustments []Adjustment
}

// Deduction is a fee withheld from an entry.
type Deduction struct {
	ID      int64
	EntryID int64
	FeeType string
	Amount  decimal.NullDecimal
}

// Adjustment is a signed correction to one of an entry's amounts.
type Adjustment struct {
	ID            int64
	EntryID       int64
	FieldCategory string
	Direction     string
	Value         decimal.NullDecimal
}

// Payee is a payout payee configured on a policy payout.
type Payee struct {
	ID               int64
	PolicyPayoutID   int64
	PayeePartyNumber string
	PayeeStatus      string
}

// Store is the read-only query surface the correlator needs.
type Store interface {
	PolicyID(ctx context.Context, policyNumber string, excludedStatuses []string) (int64, bool, error)
	PolicyPayoutID(ctx context.Context, policyID int64) (int64, bool, error)
	Payees(ctx context.Context, policyPayoutID int64) ([]Payee, error)
	// PaymentHistory returns the non-reversed entries of a payee whose payee party
	// number is partyNumber, due at or after since.
	PaymentHistory(ctx context.Context, payeeID int64, partyNumber string, since time.Time) ([]Entry, error)
	Deductions(ctx context.Context, entryIDs []int64) ([]Deduction, error)
	Adjustments(ctx context.Context, entryIDs []int64) ([]Adjustment, error)
}
