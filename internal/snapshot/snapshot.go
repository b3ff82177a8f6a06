// Package snapshot decodes the message image stored with each payout transaction.
package snapshot

import "github.com/shopspring/decimal"

// Snapshot is the normalized form of one message image.
type Snapshot struct {
	PolicyNumber string
	TransRunDate string
	TransExeDate string
	TransEffDate string
	SuspendCode  string

	Payees   []PayeePayout
	Benefits []BenefitLine

	// Payee holds the last value seen for each scalar across Payees. Its amount
	// fields are the sums over all entries.
	Payee PayeePayout
	// EndDate is the last benefit end date seen.
	EndDate      string
	ModalBenefit decimal.Decimal
}

// PayeePayout is one entry of payeePayouts.
type PayeePayout struct {
	TaxablePartyNumber   string
	TaxablePartyName     string
	GovtID               string
	GovtIDStatus         string
	GovtIDType           string
	ResidenceState       string
	ResidenceCountry     string
	PayeeStatus          string
	GrossAmt             decimal.Decimal
	FederalNonTaxableAmt decimal.Decimal
}

// BenefitLine is one entry of benefits.
type BenefitLine struct {
	EndDate      string
	ModalBenefit decimal.Decimal
}

// PartyNumbers returns the distinct non-empty taxable party numbers in entry order.
func (s *Snapshot) PartyNumbers() []string {
	seen := make(map[string]struct{}, len(s.Payees))
	var out []string
	for _, p := range s.Payees {
		if p.TaxablePartyNumber == "" {
			continue
		}
		if _, ok := seen[p.TaxablePartyNumber]; ok {
			continue
		}
		seen[p.TaxablePartyNumber] = struct{}{}
		out = append(out, p.TaxablePartyNumber)
	}
	return out
}
