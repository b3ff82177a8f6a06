// Package store reads payout transactions and ledger rows from the relational database.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/payout-report/internal/ledger"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Filters applied to TRANSACTION_HISTORY for periodic payouts.
const (
	EntityTypePolicy          = "Policy"
	RequestNamePeriodicPayout = "PeriodicPayout"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and tunes the database connection.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

// Dialect returns the gorm dialector for cfg.
func Dialect(cfg Config) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "payout.db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Open connects to the database and applies the pool settings.
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Silent
	if cfg.Debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("error opening %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error accessing connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// Store answers the read queries of the report. It never writes.
type Store struct {
	db     *gorm.DB
	logger logging.Logger
}

var _ ledger.Store = (*Store)(nil)

// New wraps db.
func New(db *gorm.DB, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Store{db: db, logger: logger.WithField(logging.FieldComponent, "store")}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transactions returns the non-reversed periodic payout transactions executed
// between start and end inclusive, newest effective date first.
func (s *Store) Transactions(ctx context.Context, start, end time.Time) ([]models.TransactionRecord, error) {
	var rows []TransactionHistory
	err := s.db.WithContext(ctx).
		Where("reversed = ? AND entity_type = ? AND request_name = ?", false, EntityTypePolicy, RequestNamePeriodicPayout).
		Where("trans_exe_date BETWEEN ? AND ?", start, end).
		Order("trans_eff_date DESC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error loading transactions: %w", err)
	}

	out := make([]models.TransactionRecord, len(rows))
	for i, r := range rows {
		out[i] = models.TransactionRecord{
			ID:           r.ID,
			TransRunDate: r.TransRunDate,
			TransExeDate: r.TransExeDate,
			TransEffDate: r.TransEffDate,
			MessageImage: []byte(r.MessageImage),
		}
	}
	s.logger.Debug("Loaded transactions",
		logging.F(logging.FieldCount, len(out)),
		logging.F(logging.FieldWindowStart, start),
		logging.F(logging.FieldWindowEnd, end))
	return out, nil
}

// ProductInfo returns the policy metadata of the given policies keyed by
// policy number. Policies in an excluded status are left out.
func (s *Store) ProductInfo(ctx context.Context, policyNumbers []string) (map[string]models.ProductInfo, error) {
	out := make(map[string]models.ProductInfo, len(policyNumbers))
	if len(policyNumbers) == 0 {
		return out, nil
	}

	var rows []Policy
	err := s.db.WithContext(ctx).
		Where("pol_number IN ?", policyNumbers).
		Where("policy_status NOT IN ?", ledger.ExcludedPolicyStatuses).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error loading product info: %w", err)
	}
	for _, r := range rows {
		out[r.PolNumber] = models.ProductInfo{
			PolNumber:      r.PolNumber,
			ManagementCode: r.ManagementCode,
			PolicyStatus:   r.PolicyStatus,
			ProductCode:    r.ProductCode,
			QualPlanType:   r.QualPlanType,
		}
	}
	return out, nil
}

func (s *Store) PolicyID(ctx context.Context, policyNumber string, excluded []string) (int64, bool, error) {
	q := s.db.WithContext(ctx).Where("pol_number = ?", policyNumber)
	if len(excluded) > 0 {
		q = q.Where("policy_status NOT IN ?", excluded)
	}
	var p Policy
	if err := q.Order("id").Take(&p).Error; err != nil {
		return notFound(err)
	}
	return p.ID, true, nil
}

func (s *Store) PolicyPayoutID(ctx context.Context, policyID int64) (int64, bool, error) {
	var pp PolicyPayout
	err := s.db.WithContext(ctx).Where("policy_id = ?", policyID).Order("id").Take(&pp).Error
	if err != nil {
		return notFound(err)
	}
	return pp.ID, true, nil
}

func (s *Store) Payees(ctx context.Context, policyPayoutID int64) ([]ledger.Payee, error) {
	var rows []PayoutPayee
	err := s.db.WithContext(ctx).Where("policy_payout_id = ?", policyPayoutID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Payee, len(rows))
	for i, r := range rows {
		out[i] = ledger.Payee{
			ID:               r.ID,
			PolicyPayoutID:   r.PolicyPayoutID,
			PayeePartyNumber: r.PayeePartyNumber,
			PayeeStatus:      r.PayeeStatus,
		}
	}
	return out, nil
}

func (s *Store) PaymentHistory(ctx context.Context, payeeID int64, partyNumber string, since time.Time) ([]ledger.Entry, error) {
	var rows []PayoutPaymentHistory
	err := s.db.WithContext(ctx).
		Where("payout_payee_id = ? AND payee_party_number = ? AND reversed = ?", payeeID, partyNumber, false).
		Where("payout_due_date >= ?", since).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Entry, len(rows))
	for i, r := range rows {
		out[i] = ledger.Entry{
			ID:                 r.ID,
			PayeeID:            r.PayoutPayeeID,
			PayeePartyNumber:   r.PayeePartyNumber,
			TaxablePartyNumber: r.TaxablePartyNumber,
			DueDate:            r.PayoutDueDate,
			TransExeDate:       r.TransExeDate,
			GrossAmt:           r.GrossAmt,
			Reversed:           r.Reversed,
			PayeeStatus:        r.PayeeStatus,
		}
	}
	return out, nil
}

func (s *Store) Deductions(ctx context.Context, entryIDs []int64) ([]ledger.Deduction, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	var rows []PayoutPaymentHistoryDeduction
	err := s.db.WithContext(ctx).Where("payout_payment_history_id IN ?", entryIDs).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Deduction, len(rows))
	for i, r := range rows {
		out[i] = ledger.Deduction{
			ID:      r.ID,
			EntryID: r.PayoutPaymentHistoryID,
			FeeType: r.FeeType,
			Amount:  r.FeeAmt,
		}
	}
	return out, nil
}

func (s *Store) Adjustments(ctx context.Context, entryIDs []int64) ([]ledger.Adjustment, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}
	var rows []PayoutPaymentHistoryAdjustment
	err := s.db.WithContext(ctx).Where("payout_payment_history_id IN ?", entryIDs).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Adjustment, len(rows))
	for i, r := range rows {
		out[i] = ledger.Adjustment{
			ID:            r.ID,
			EntryID:       r.PayoutPaymentHistoryID,
			FieldCategory: r.FieldAdjustment,
			Direction:     r.AdjustmentType,
			Value:         r.AdjustmentValue,
		}
	}
	return out, nil
}

func notFound(err error) (int64, bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	return 0, false, err
}
