package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionHistory is a read projection of TRANSACTION_HISTORY.
type TransactionHistory struct {
	ID           int64               `gorm:"column:id;primaryKey"`
	EntityType   string              `gorm:"column:entity_type"`
	RequestName  string              `gorm:"column:request_name"`
	Reversed     bool                `gorm:"column:reversed"`
	TransEffDate *time.Time          `gorm:"column:trans_eff_date"`
	TransExeDate *time.Time          `gorm:"column:trans_exe_date;index"`
	TransRunDate *time.Time          `gorm:"column:trans_run_date"`
	GrossAmt     decimal.NullDecimal `gorm:"column:gross_amt;type:decimal(17,2)"`
	MessageImage string              `gorm:"column:message_image;type:text"`
}

func (TransactionHistory) TableName() string { return "TRANSACTION_HISTORY" }

// Policy is a read projection of POLICY.
type Policy struct {
	ID             int64  `gorm:"column:id;primaryKey"`
	PolNumber      string `gorm:"column:pol_number;index"`
	ManagementCode string `gorm:"column:management_code"`
	PolicyStatus   string `gorm:"column:policy_status"`
	ProductCode    string `gorm:"column:product_code"`
	QualPlanType   string `gorm:"column:qual_plan_type"`
}

func (Policy) TableName() string { return "POLICY" }

// PolicyPayout is a read projection of POLICY_PAYOUT.
type PolicyPayout struct {
	ID       int64 `gorm:"column:id;primaryKey"`
	PolicyID int64 `gorm:"column:policy_id;index"`
}

func (PolicyPayout) TableName() string { return "POLICY_PAYOUT" }

// PayoutPayee is a read projection of PAYOUT_PAYEE.
type PayoutPayee struct {
	ID               int64  `gorm:"column:id;primaryKey"`
	PolicyPayoutID   int64  `gorm:"column:policy_payout_id;index"`
	PayeePartyNumber string `gorm:"column:payee_party_number"`
	PayeeStatus      string `gorm:"column:payee_status"`
}

func (PayoutPayee) TableName() string { return "PAYOUT_PAYEE" }

// PayoutPaymentHistory is a read projection of PAYOUT_PAYMENT_HISTORY.
type PayoutPaymentHistory struct {
	ID                 int64               `gorm:"column:id;primaryKey"`
	PayoutPayeeID      int64               `gorm:"column:payout_payee_id;index"`
	PayeePartyNumber   string              `gorm:"column:payee_party_number"`
	TaxablePartyNumber string              `gorm:"column:taxable_party_number"`
	PayeeStatus        string              `gorm:"column:payee_status"`
	PayoutDueDate      *time.Time          `gorm:"column:payout_due_date"`
	TransExeDate       *time.Time          `gorm:"column:trans_exe_date"`
	GrossAmt           decimal.NullDecimal `gorm:"column:gross_amt;type:decimal(17,2)"`
	Reversed           bool                `gorm:"column:reversed"`
}

func (PayoutPaymentHistory) TableName() string { return "PAYOUT_PAYMENT_HISTORY" }

// PayoutPaymentHistoryDeduction is a read projection of PAYOUT_PAYMENT_HISTORY_DEDUCTION.
type PayoutPaymentHistoryDeduction struct {
	ID                     int64               `gorm:"column:id;primaryKey"`
	PayoutPaymentHistoryID int64               `gorm:"column:payout_payment_history_id;index"`
	FeeType                string              `gorm:"column:fee_type"`
	FeeAmt                 decimal.NullDecimal `gorm:"column:fee_amt;type:decimal(17,2)"`
}

func (PayoutPaymentHistoryDeduction) TableName() string { return "PAYOUT_PAYMENT_HISTORY_DEDUCTION" }

// PayoutPaymentHistoryAdjustment is a read projection of PAYOUT_PAYMENT_HISTORY_ADJUSTMENT.
type PayoutPaymentHistoryAdjustment struct {
	ID                     int64               `gorm:"column:id;primaryKey"`
	PayoutPaymentHistoryID int64               `gorm:"column:payout_payment_history_id;index"`
	FieldAdjustment        string              `gorm:"column:field_adjustment"`
	AdjustmentType         string              `gorm:"column:adjustment_type"`
	AdjustmentValue        decimal.NullDecimal `gorm:"column:adjustment_value;type:decimal(17,2)"`
}

func (PayoutPaymentHistoryAdjustment) TableName() string { return "PAYOUT_PAYMENT_HISTORY_ADJUSTMENT" }

// Tables lists every projection, in dependency order, for migrations in tests
// and local databases.
func Tables() []interface{} {
	return []interface{}{
		&TransactionHistory{},
		&Policy{},
		&PolicyPayout{},
		&PayoutPayee{},
		&PayoutPaymentHistory{},
		&PayoutPaymentHistoryDeduction{},
		&PayoutPaymentHistoryAdjustment{},
	}
}
