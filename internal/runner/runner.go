// Package runner drives a report run: load, decode, correlate, aggregate and assemble.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"fjacquet/payout-report/internal/codes"
	"fjacquet/payout-report/internal/dateutils"
	"fjacquet/payout-report/internal/ledger"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/metrics"
	"fjacquet/payout-report/internal/models"
	"fjacquet/payout-report/internal/party"
	"fjacquet/payout-report/internal/report"
	"fjacquet/payout-report/internal/reporterror"
	"fjacquet/payout-report/internal/snapshot"
	"fjacquet/payout-report/internal/ytd"
)

// TransactionSource loads the periodic payout transactions of a window.
type TransactionSource interface {
	Transactions(ctx context.Context, start, end time.Time) ([]models.TransactionRecord, error)
}

// ProductSource loads policy metadata keyed by policy number.
type ProductSource interface {
	ProductInfo(ctx context.Context, policyNumbers []string) (map[string]models.ProductInfo, error)
}

// Deps are the collaborators of a Runner.
type Deps struct {
	Transactions TransactionSource
	Products     ProductSource
	Ledger       ledger.Store
	Parties      party.Resolver
	Registry     *codes.Registry
	Metrics      *metrics.Metrics
	Logger       logging.Logger
	Workers      int
}

// Stats counts the rows of a run and the row-local failures.
type Stats struct {
	Total             int `json:"total"`
	DecodeErrors      int `json:"decodeErrors"`
	CorrelationErrors int `json:"correlationErrors"`
	AddressErrors     int `json:"addressErrors"`
}

// Result is the outcome of a run.
type Result struct {
	Window ytd.Window
	Rows   []report.Row
	Stats  Stats
}

// Runner produces report rows for a window.
type Runner struct {
	transactions TransactionSource
	products     ProductSource
	parties      party.Resolver
	correlator   *ledger.Correlator
	decoder      *snapshot.Decoder
	assembler    *report.Assembler
	processor    *ConcurrentProcessor
	metrics      *metrics.Metrics
	logger       logging.Logger
}

// New creates a Runner. Transactions, Products, Ledger and Registry are required.
func New(d Deps) (*Runner, error) {
	switch {
	case d.Transactions == nil:
		return nil, errors.New("runner: transaction source is required")
	case d.Products == nil:
		return nil, errors.New("runner: product source is required")
	case d.Ledger == nil:
		return nil, errors.New("runner: ledger store is required")
	case d.Registry == nil:
		return nil, errors.New("runner: code registry is required")
	}

	logger := d.Logger
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	parties := d.Parties
	if parties == nil {
		parties = party.StaticResolver{}
	}

	decoder := snapshot.NewDecoder(logger)
	decoder.OnFieldError = d.Metrics.FieldError
	assembler := report.NewAssembler(d.Registry, logger)
	assembler.OnMiss = d.Metrics.FieldError

	return &Runner{
		transactions: d.Transactions,
		products:     d.Products,
		parties:      parties,
		correlator:   ledger.NewCorrelator(d.Ledger, logger),
		decoder:      decoder,
		assembler:    assembler,
		processor:    NewConcurrentProcessor(logger, d.Workers),
		metrics:      d.Metrics,
		logger:       logger.WithField(logging.FieldComponent, "runner"),
	}, nil
}

// Run builds one row per transaction executed in w, in source order.
// It returns reporterror.ErrNoData when the window holds no transactions.
func (r *Runner) Run(ctx context.Context, w ytd.Window) (*Result, error) {
	start := time.Now()
	log := r.logger.WithFields(
		logging.F(logging.FieldWindowStart, w.Start),
		logging.F(logging.FieldWindowEnd, w.End))

	records, err := r.transactions.Transactions(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("error loading transactions: %w", err)
	}
	if len(records) == 0 {
		log.Info("No transactions in window")
		return nil, reporterror.ErrNoData
	}
	log.Info("Processing transactions", logging.F(logging.FieldCount, len(records)))

	var decodeErrors, correlationErrors, addressErrors int64

	snaps := make([]*snapshot.Snapshot, len(records))
	for i, rec := range records {
		s, err := r.decoder.Decode(rec.MessageImage)
		if err != nil {
			derr := &reporterror.DecodeError{TransactionID: rec.ID, Err: err}
			log.WithError(derr).Error("Failed to decode message image",
				logging.F(logging.FieldTransactionID, rec.ID))
			decodeErrors++
			r.metrics.RowError(metrics.KindDecode)
			continue
		}
		snaps[i] = s
	}

	products, err := r.products.ProductInfo(ctx, policyNumbers(snaps))
	if err != nil {
		return nil, fmt.Errorf("error loading product info: %w", err)
	}

	addresses, err := r.resolveAddresses(ctx, partyNumbers(snaps), &addressErrors)
	if err != nil {
		return nil, err
	}

	since := dateutils.StartOfDay(w.Start)
	rows := make([]report.Row, len(records))
	err = r.processor.Process(ctx, len(records), func(ctx context.Context, i int) {
		s := snaps[i]
		if s == nil {
			rows[i] = report.ErrorRow()
			return
		}

		entries, err := r.correlator.Resolve(ctx, s.PolicyNumber, s.Payee.TaxablePartyNumber, since)
		if err != nil {
			log.WithError(err).Warn("Ledger correlation failed, reporting zero totals",
				logging.F(logging.FieldTransactionID, records[i].ID),
				logging.F(logging.FieldPolicyNumber, s.PolicyNumber))
			atomic.AddInt64(&correlationErrors, 1)
			r.metrics.RowError(metrics.KindCorrelation)
			entries = nil
		}

		product := products[s.PolicyNumber]
		if product.IsEmpty() {
			log.Debug("No policy metadata found",
				logging.F(logging.FieldTransactionID, records[i].ID),
				logging.F(logging.FieldPolicyNumber, s.PolicyNumber))
		}

		rows[i] = r.assembler.Assemble(report.Input{
			Snapshot:  s,
			Product:   product,
			Totals:    ytd.Aggregate(entries, w),
			Addresses: addresses[s.Payee.TaxablePartyNumber],
		})
	})
	if err != nil {
		return nil, fmt.Errorf("report run interrupted: %w", err)
	}

	result := &Result{
		Window: w,
		Rows:   rows,
		Stats: Stats{
			Total:             len(rows),
			DecodeErrors:      int(decodeErrors),
			CorrelationErrors: int(atomic.LoadInt64(&correlationErrors)),
			AddressErrors:     int(atomic.LoadInt64(&addressErrors)),
		},
	}

	elapsed := time.Since(start)
	r.metrics.AddRows(len(rows))
	r.metrics.ObserveRun(elapsed)
	log.Info("Report run completed",
		logging.F(logging.FieldCount, result.Stats.Total),
		logging.F("decode_errors", result.Stats.DecodeErrors),
		logging.F("correlation_errors", result.Stats.CorrelationErrors),
		logging.F("address_errors", result.Stats.AddressErrors),
		logging.F(logging.FieldDuration, elapsed.Milliseconds()))
	return result, nil
}

// resolveAddresses fetches the addresses of every party once. A failed lookup
// is logged and counted, and the party gets an empty list.
func (r *Runner) resolveAddresses(ctx context.Context, numbers []string, failures *int64) (map[string][]models.Address, error) {
	found := make([][]models.Address, len(numbers))
	err := r.processor.Process(ctx, len(numbers), func(ctx context.Context, i int) {
		addresses, err := r.parties.Resolve(ctx, numbers[i])
		if err != nil {
			r.logger.WithError(err).Warn("Address lookup failed",
				logging.F(logging.FieldTaxablePartyNumber, numbers[i]))
			atomic.AddInt64(failures, 1)
			r.metrics.RowError(metrics.KindAddress)
			addresses = []models.Address{}
		}
		found[i] = addresses
	})
	if err != nil {
		return nil, fmt.Errorf("address lookup interrupted: %w", err)
	}

	out := make(map[string][]models.Address, len(numbers))
	for i, n := range numbers {
		out[n] = found[i]
	}
	return out, nil
}

// MessageImages returns the decodable message images of the window keyed by
// transaction id.
func (r *Runner) MessageImages(ctx context.Context, w ytd.Window) (map[string]json.RawMessage, error) {
	records, err := r.transactions.Transactions(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("error loading transactions: %w", err)
	}
	if len(records) == 0 {
		return nil, reporterror.ErrNoData
	}

	images := make(map[string]json.RawMessage, len(records))
	for _, rec := range records {
		if !json.Valid(rec.MessageImage) {
			r.logger.Warn("Skipping invalid message image",
				logging.F(logging.FieldTransactionID, rec.ID))
			continue
		}
		images[strconv.FormatInt(rec.ID, 10)] = json.RawMessage(rec.MessageImage)
	}
	return images, nil
}

func policyNumbers(snaps []*snapshot.Snapshot) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range snaps {
		if s == nil || s.PolicyNumber == "" {
			continue
		}
		if _, ok := seen[s.PolicyNumber]; ok {
			continue
		}
		seen[s.PolicyNumber] = struct{}{}
		out = append(out, s.PolicyNumber)
	}
	return out
}

func partyNumbers(snaps []*snapshot.Snapshot) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range snaps {
		if s == nil {
			continue
		}
		for _, n := range s.PartyNumbers() {
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	return out
}
