package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"fjacquet/payout-report/internal/currencyutils"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/reporterror"

	"github.com/shopspring/decimal"
)

// Source keys of the message image.
const (
	keyPolNumber    = "polNumber"
	keyTransRunDate = "transRunDate"
	keyTransExeDate = "transExeDate"
	keyTransEffDate = "transEffDate"
	keySuspendCode  = "suspendCode"
	keyPayeePayouts = "payeePayouts"
	keyBenefits     = "benefits"

	keyTaxablePartyNumber   = "taxablePartyNumber"
	keyTaxablePartyName     = "taxablePartyName"
	keyGovtID               = "taxableToGovtID"
	keyGovtIDStatus         = "taxableToGovtIDStat"
	keyGovtIDType           = "taxableToGovtIdTC"
	keyResidenceState       = "taxableToResidenceState"
	keyResidenceCountry     = "taxableToResidenceCountry"
	keyPayeeStatus          = "payeeStatus"
	keyGrossAmt             = "grossAmt"
	keyFederalNonTaxableAmt = "federalNonTaxableAmt"

	keyEndDate      = "endDate"
	keyModalBenefit = "modalBenefit"
)

// ErrNotObject is returned when the document is not a JSON object.
var ErrNotObject = errors.New("message image is not a JSON object")

// ErrTrailingData is returned when anything but whitespace follows the document.
var ErrTrailingData = errors.New("message image has trailing data")

// Decoder turns raw message images into Snapshots.
type Decoder struct {
	logger logging.Logger
	// OnFieldError, when set, is called with the source key of every field that
	// was present but could not be parsed.
	OnFieldError func(field string)
}

// NewDecoder creates a Decoder.
func NewDecoder(logger logging.Logger) *Decoder {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Decoder{logger: logger.WithField(logging.FieldComponent, "snapshot")}
}

// Decode parses one message image. Only a document that is not a JSON object
// fails; missing, null or mistyped fields take their zero value.
func (d *Decoder) Decode(raw []byte) (*Snapshot, error) {
	doc, err := parseObject(raw)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		PolicyNumber: text(doc[keyPolNumber]),
		TransRunDate: text(doc[keyTransRunDate]),
		TransExeDate: text(doc[keyTransExeDate]),
		TransEffDate: text(doc[keyTransEffDate]),
		SuspendCode:  text(doc[keySuspendCode]),
	}
	log := d.logger.WithField(logging.FieldPolicyNumber, s.PolicyNumber)

	for i, item := range array(doc[keyPayeePayouts]) {
		obj, ok := item.(map[string]interface{})
		if !ok {
			log.Warn("Skipping payee payout that is not an object", logging.F("index", i))
			continue
		}
		p := PayeePayout{
			TaxablePartyNumber:   text(obj[keyTaxablePartyNumber]),
			TaxablePartyName:     text(obj[keyTaxablePartyName]),
			GovtID:               text(obj[keyGovtID]),
			GovtIDStatus:         text(obj[keyGovtIDStatus]),
			GovtIDType:           text(obj[keyGovtIDType]),
			ResidenceState:       text(obj[keyResidenceState]),
			ResidenceCountry:     text(obj[keyResidenceCountry]),
			PayeeStatus:          text(obj[keyPayeeStatus]),
			GrossAmt:             d.amount(log, obj, keyGrossAmt),
			FederalNonTaxableAmt: d.amount(log, obj, keyFederalNonTaxableAmt),
		}
		s.Payees = append(s.Payees, p)
		mergePayee(&s.Payee, obj, p)
	}

	for i, item := range array(doc[keyBenefits]) {
		obj, ok := item.(map[string]interface{})
		if !ok {
			log.Warn("Skipping benefit that is not an object", logging.F("index", i))
			continue
		}
		b := BenefitLine{
			EndDate:      text(obj[keyEndDate]),
			ModalBenefit: d.amount(log, obj, keyModalBenefit),
		}
		s.Benefits = append(s.Benefits, b)
		if isScalar(obj[keyEndDate]) {
			s.EndDate = b.EndDate
		}
		s.ModalBenefit = s.ModalBenefit.Add(b.ModalBenefit)
	}

	return s, nil
}

// mergePayee applies last-write-wins: a later entry overwrites a scalar only
// when it carries a value for it.
func mergePayee(dst *PayeePayout, obj map[string]interface{}, p PayeePayout) {
	set := func(target *string, key, value string) {
		if isScalar(obj[key]) {
			*target = value
		}
	}
	set(&dst.TaxablePartyNumber, keyTaxablePartyNumber, p.TaxablePartyNumber)
	set(&dst.TaxablePartyName, keyTaxablePartyName, p.TaxablePartyName)
	set(&dst.GovtID, keyGovtID, p.GovtID)
	set(&dst.GovtIDStatus, keyGovtIDStatus, p.GovtIDStatus)
	set(&dst.GovtIDType, keyGovtIDType, p.GovtIDType)
	set(&dst.ResidenceState, keyResidenceState, p.ResidenceState)
	set(&dst.ResidenceCountry, keyResidenceCountry, p.ResidenceCountry)
	set(&dst.PayeeStatus, keyPayeeStatus, p.PayeeStatus)

	dst.GrossAmt = dst.GrossAmt.Add(p.GrossAmt)
	dst.FederalNonTaxableAmt = dst.FederalNonTaxableAmt.Add(p.FederalNonTaxableAmt)
}

func (d *Decoder) amount(log logging.Logger, obj map[string]interface{}, key string) decimal.Decimal {
	v, present := obj[key]
	if !present || v == nil {
		return decimal.Zero
	}

	var (
		raw string
		out decimal.Decimal
		err error
	)
	switch t := v.(type) {
	case json.Number:
		raw = t.String()
		out, err = decimal.NewFromString(raw)
	case string:
		raw = t
		out, err = currencyutils.ParseAmount(t)
	default:
		log.Debug("Amount field has unexpected type, using zero", logging.F(logging.FieldField, key))
		return decimal.Zero
	}

	if err != nil {
		fieldErr := &reporterror.FieldError{Field: key, Value: raw, Err: err}
		log.WithError(fieldErr).Warn("Failed to parse amount, using zero", logging.F(logging.FieldField, key))
		if d.OnFieldError != nil {
			d.OnFieldError(key)
		}
		return decimal.Zero
	}
	return out
}

func parseObject(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, ErrNotObject
	}
	return obj, nil
}

// text renders a scalar JSON value as text. Missing, null and container values are "".
func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, json.Number, bool:
		return true
	default:
		return false
	}
}

func array(v interface{}) []interface{} {
	a, _ := v.([]interface{})
	return a
}
