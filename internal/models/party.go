package models

import "strings"

// Address is a party mailing address as served by the party service.
// Absent lines are nil; an empty string is kept as a present value.
type Address struct {
	PrefAddr bool    `json:"prefAddr" yaml:"prefAddr"`
	Line1    *string `json:"line1" yaml:"line1"`
	Line2    *string `json:"line2" yaml:"line2"`
	Line3    *string `json:"line3" yaml:"line3"`
	Line4    *string `json:"line4" yaml:"line4"`
	Line5    *string `json:"line5" yaml:"line5"`
	Zip      *string `json:"zip" yaml:"zip"`
}

// Party is the subset of party details the CLI prints.
type Party struct {
	ID               int64  `json:"id" yaml:"id"`
	PartyNumber      string `json:"partyNumber" yaml:"partyNumber"`
	PartyTypeCode    string `json:"partyTypeCode" yaml:"partyTypeCode"`
	GovtID           string `json:"govtId" yaml:"govtId"`
	GovtIDStat       string `json:"govtIdStat" yaml:"govtIdStat"`
	GovtIDTC         string `json:"govtIdtc" yaml:"govtIdtc"`
	ResidenceState   string `json:"residenceState" yaml:"residenceState"`
	ResidenceCountry string `json:"residenceCountry" yaml:"residenceCountry"`
}

// String renders the address as "Line 1: a Line 2: b ... Zip: z", skipping
// absent parts.
func (a Address) String() string {
	parts := []struct {
		label string
		value *string
	}{
		{"Line 1", a.Line1},
		{"Line 2", a.Line2},
		{"Line 3", a.Line3},
		{"Line 4", a.Line4},
		{"Line 5", a.Line5},
		{"Zip", a.Zip},
	}

	formatted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.value == nil {
			continue
		}
		formatted = append(formatted, p.label+": "+*p.value)
	}
	return strings.Join(formatted, " ")
}

// IsEmpty returns true if the address carries no line and no zip.
func (a Address) IsEmpty() bool {
	return a.Line1 == nil && a.Line2 == nil && a.Line3 == nil &&
		a.Line4 == nil && a.Line5 == nil && a.Zip == nil
}

// SelectAddresses returns the first preferred and the first non-preferred
// address. Either may be nil.
func SelectAddresses(addresses []Address) (preferred, secondary *Address) {
	for i := range addresses {
		if addresses[i].PrefAddr && preferred == nil {
			preferred = &addresses[i]
		}
		if !addresses[i].PrefAddr && secondary == nil {
			secondary = &addresses[i]
		}
	}
	return preferred, secondary
}
