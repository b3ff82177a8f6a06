// Package ledgertest provides an in-memory ledger.Store for tests.
package ledgertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"fjacquet/payout-report/internal/ledger"
)

// Policy is a policy row held by Store.
type Policy struct {
	ID       int64
	Number   string
	Status   string
	PayoutID int64
}

// Store is an in-memory ledger.Store with query counting and error injection.
type Store struct {
	Policies       []Policy
	PayeeRows      []ledger.Payee
	Entries        []ledger.Entry
	DeductionRows  []ledger.Deduction
	AdjustmentRows []ledger.Adjustment

	// Err, when set, is returned by the query named ErrStep (or every query
	// when ErrStep is empty).
	Err     error
	ErrStep string

	mu    sync.RWMutex
	calls map[string]int
}

var _ ledger.Store = (*Store)(nil)

func (m *Store) hit(step string) error {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[step]++
	m.mu.Unlock()
	if m.Err != nil && (m.ErrStep == "" || m.ErrStep == step) {
		return m.Err
	}
	return nil
}

// Calls reports how many times a step's query ran.
func (m *Store) Calls(step string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[step]
}

func (m *Store) PolicyID(_ context.Context, policyNumber string, excluded []string) (int64, bool, error) {
	if err := m.hit(ledger.StepPolicy); err != nil {
		return 0, false, err
	}
	for _, p := range m.Policies {
		if p.Number != policyNumber || contains(excluded, p.Status) {
			continue
		}
		return p.ID, true, nil
	}
	return 0, false, nil
}

func (m *Store) PolicyPayoutID(_ context.Context, policyID int64) (int64, bool, error) {
	if err := m.hit(ledger.StepPayout); err != nil {
		return 0, false, err
	}
	for _, p := range m.Policies {
		if p.ID == policyID && p.PayoutID != 0 {
			return p.PayoutID, true, nil
		}
	}
	return 0, false, nil
}

func (m *Store) Payees(_ context.Context, policyPayoutID int64) ([]ledger.Payee, error) {
	if err := m.hit(ledger.StepPayee); err != nil {
		return nil, err
	}
	var out []ledger.Payee
	for _, p := range m.PayeeRows {
		if p.PolicyPayoutID == policyPayoutID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Store) PaymentHistory(_ context.Context, payeeID int64, partyNumber string, since time.Time) ([]ledger.Entry, error) {
	if err := m.hit(ledger.StepHistory); err != nil {
		return nil, err
	}
	var out []ledger.Entry
	for _, e := range m.Entries {
		if e.PayeeID != payeeID || e.Reversed || e.PayeePartyNumber != partyNumber {
			continue
		}
		if e.DueDate == nil || e.DueDate.Before(since) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Store) Deductions(_ context.Context, entryIDs []int64) ([]ledger.Deduction, error) {
	if err := m.hit(ledger.StepDeductions); err != nil {
		return nil, err
	}
	var out []ledger.Deduction
	for _, d := range m.DeductionRows {
		if containsID(entryIDs, d.EntryID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Store) Adjustments(_ context.Context, entryIDs []int64) ([]ledger.Adjustment, error) {
	if err := m.hit(ledger.StepAdjustments); err != nil {
		return nil, err
	}
	var out []ledger.Adjustment
	for _, a := range m.AdjustmentRows {
		if containsID(entryIDs, a.EntryID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
