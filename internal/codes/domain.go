package codes

import (
	"fmt"
	"strings"
)

// Domain names one family of business codes.
type Domain string

const (
	Suspend          Domain = "suspend"
	QualPlan         Domain = "qualplan"
	ResidenceState   Domain = "state"
	ResidenceCountry Domain = "country"
	GovtIDType       Domain = "govtidtc"
	GovtIDStatus     Domain = "govtidstat"
	PolicyStatus     Domain = "polstat"
	PayeeStatus      Domain = "payeestatus"
)

// Unknown is returned for codes a table does not define.
const Unknown = "Unknown"

// definition describes where a domain's table lives and how it is keyed.
type definition struct {
	Domain   Domain
	File     string
	IntKeyed bool
}

// definitions lists every domain the registry must load, in display order.
var definitions = []definition{
	{Domain: Suspend, File: "OLIEXT_LU_SUSPEND.xml"},
	{Domain: QualPlan, File: "OLI_LU_QUALPLAN.xml", IntKeyed: true},
	{Domain: ResidenceState, File: "OLI_LU_STATE.xml", IntKeyed: true},
	{Domain: ResidenceCountry, File: "OLI_LU_NATION.xml", IntKeyed: true},
	{Domain: GovtIDType, File: "OLI_LU_GOVTIDTC.xml", IntKeyed: true},
	{Domain: GovtIDStatus, File: "OLI_LU_GOVTIDSTAT.xml", IntKeyed: true},
	{Domain: PolicyStatus, File: "OLI_LU_POLSTAT.xml", IntKeyed: true},
	{Domain: PayeeStatus, File: "OLIEXT_LU_PAYEESTATUS.xml", IntKeyed: true},
}

// Domains returns every known domain.
func Domains() []Domain {
	out := make([]Domain, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d.Domain)
	}
	return out
}

// ParseDomain resolves a domain by name; matching ignores case.
func ParseDomain(name string) (Domain, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, d := range definitions {
		if string(d.Domain) == name {
			return d.Domain, nil
		}
	}
	return "", fmt.Errorf("unknown code domain %q", name)
}

func lookupDefinition(d Domain) (definition, bool) {
	for _, def := range definitions {
		if def.Domain == d {
			return def, true
		}
	}
	return definition{}, false
}
