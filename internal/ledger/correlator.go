package ledger

import (
	"context"
	"sort"
	"strings"
	"time"

	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/reporterror"
)

// Resolution steps, used in logs and CorrelationError.Step.
const (
	StepPolicy      = "policy"
	StepPayout      = "policy_payout"
	StepPayee       = "payout_payee"
	StepHistory     = "payment_history"
	StepDeductions  = "deductions"
	StepAdjustments = "adjustments"
)

// Correlator walks policy -> policy payout -> payee -> payment history.
type Correlator struct {
	store  Store
	logger logging.Logger
}

// NewCorrelator creates a Correlator over store.
func NewCorrelator(store Store, logger logging.Logger) *Correlator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Correlator{store: store, logger: logger.WithField(logging.FieldComponent, "ledger")}
}

// Resolve returns the payee's non-reversed payment history due at or after
// since, ordered by ascending id, with deductions and adjustments attached.
//
// A policy, payout or payee that cannot be found yields an empty slice and a nil
// error. Storage failures are returned as *reporterror.CorrelationError.
func (c *Correlator) Resolve(ctx context.Context, policyNumber, taxablePartyNumber string, since time.Time) ([]Entry, error) {
	log := c.logger.WithFields(
		logging.F(logging.FieldPolicyNumber, policyNumber),
		logging.F(logging.FieldTaxablePartyNumber, taxablePartyNumber),
	)
	fail := func(step string, err error) error {
		return &reporterror.CorrelationError{Step: step, PolicyNumber: policyNumber, Err: err}
	}
	miss := func(step string) ([]Entry, error) {
		log.Debug("No ledger match", logging.F(logging.FieldStep, step))
		return []Entry{}, nil
	}

	if strings.TrimSpace(policyNumber) == "" || strings.TrimSpace(taxablePartyNumber) == "" {
		return miss(StepPolicy)
	}

	policyID, ok, err := c.store.PolicyID(ctx, policyNumber, ExcludedPolicyStatuses)
	if err != nil {
		return nil, fail(StepPolicy, err)
	}
	if !ok {
		return miss(StepPolicy)
	}

	payoutID, ok, err := c.store.PolicyPayoutID(ctx, policyID)
	if err != nil {
		return nil, fail(StepPayout, err)
	}
	if !ok {
		return miss(StepPayout)
	}

	payees, err := c.store.Payees(ctx, payoutID)
	if err != nil {
		return nil, fail(StepPayee, err)
	}
	payee, ok := matchPayee(payees, taxablePartyNumber)
	if !ok {
		return miss(StepPayee)
	}

	history, err := c.store.PaymentHistory(ctx, payee.ID, strings.TrimSpace(taxablePartyNumber), since)
	if err != nil {
		return nil, fail(StepHistory, err)
	}

	entries := make([]Entry, 0, len(history))
	for _, e := range history {
		if e.Reversed {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return miss(StepHistory)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	if step, err := c.attachLineItems(ctx, entries); err != nil {
		return nil, fail(step, err)
	}

	log.Debug("Resolved ledger entries", logging.F(logging.FieldCount, len(entries)))
	return entries, nil
}

// attachLineItems loads deductions and adjustments for entries in two queries.
// On failure it returns the step that failed.
func (c *Correlator) attachLineItems(ctx context.Context, entries []Entry) (string, error) {
	ids := make([]int64, len(entries))
	index := make(map[int64]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		index[e.ID] = i
		entries[i].Deductions = nil
		entries[i].Adjustments = nil
	}

	deductions, err := c.store.Deductions(ctx, ids)
	if err != nil {
		return StepDeductions, err
	}
	for _, d := range deductions {
		if i, ok := index[d.EntryID]; ok {
			entries[i].Deductions = append(entries[i].Deductions, d)
		}
	}

	adjustments, err := c.store.Adjustments(ctx, ids)
	if err != nil {
		return StepAdjustments, err
	}
	for _, a := range adjustments {
		if i, ok := index[a.EntryID]; ok {
			entries[i].Adjustments = append(entries[i].Adjustments, a)
		}
	}
	return "", nil
}

// matchPayee finds the payee whose stored party number equals the trimmed
// partyNumber exactly, the same match the payment history query applies. The
// first match wins.
func matchPayee(payees []Payee, partyNumber string) (Payee, bool) {
	want := strings.TrimSpace(partyNumber)
	for _, p := range payees {
		if p.PayeePartyNumber == want {
			return p, true
		}
	}
	return Payee{}, false
}
