package report

import (
	"fjacquet/payout-report/internal/codes"
	"fjacquet/payout-report/internal/currencyutils"
	"fjacquet/payout-report/internal/dateutils"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/models"
	"fjacquet/payout-report/internal/snapshot"
	"fjacquet/payout-report/internal/ytd"
)

// Input is everything needed to build one row.
type Input struct {
	Snapshot  *snapshot.Snapshot
	Product   models.ProductInfo
	Totals    ytd.Totals
	Addresses []models.Address
}

// Assembler maps a decoded snapshot and its context to a report Row.
type Assembler struct {
	registry *codes.Registry
	logger   logging.Logger

	// OnMiss, when set, is called with the column name of every coded field
	// that translated to Unknown.
	OnMiss func(field string)
}

// NewAssembler creates an Assembler translating codes through registry.
func NewAssembler(registry *codes.Registry, logger logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Assembler{registry: registry, logger: logger.WithField(logging.FieldComponent, "assembler")}
}

// Assemble builds the row for in. A nil snapshot yields the error marker row.
func (a *Assembler) Assemble(in Input) Row {
	s := in.Snapshot
	if s == nil {
		return ErrorRow()
	}
	log := a.logger.WithField(logging.FieldPolicyNumber, s.PolicyNumber)

	preferred, secondary := models.SelectAddresses(in.Addresses)

	return Row{
		RunYear:                 dateutils.Year(s.TransRunDate),
		TransRunDate:            dateutils.ToUSDate(s.TransRunDate),
		TransExeDate:            dateutils.ToUSDate(s.TransExeDate),
		ManagementCode:          in.Product.ManagementCode,
		ProductCode:             in.Product.ProductCode,
		PolNumber:               s.PolicyNumber,
		PolicyStatus:            a.translate(log, "Policy Status", codes.PolicyStatus, in.Product.PolicyStatus),
		QualPlanType:            a.translate(log, "QualPlanType", codes.QualPlan, in.Product.QualPlanType),
		SuspendCode:             a.translate(log, "Suspend Code", codes.Suspend, s.SuspendCode),
		PartyID:                 s.Payee.TaxablePartyNumber,
		PartyFullName:           s.Payee.TaxablePartyName,
		GovtID:                  s.Payee.GovtID,
		GovtIDStatus:            a.translate(log, "Govt ID Status", codes.GovtIDStatus, s.Payee.GovtIDStatus),
		GovtIDType:              a.translate(log, "govt ID Type Code", codes.GovtIDType, s.Payee.GovtIDType),
		PayeeStatus:             a.translate(log, "payeeStatus", codes.PayeeStatus, s.Payee.PayeeStatus),
		ResidenceState:          a.translate(log, "Residence State", codes.ResidenceState, s.Payee.ResidenceState),
		ResidenceCountry:        a.translate(log, "Residence Country", codes.ResidenceCountry, s.Payee.ResidenceCountry),
		PreferredMailingAddress: FormatAddress(preferred),
		MailingAddress:          FormatAddress(secondary),
		YTDGross:                currencyutils.FormatUSD(in.Totals.Gross),
		YTDFederal:              currencyutils.FormatUSD(in.Totals.Federal),
		YTDState:                currencyutils.FormatUSD(in.Totals.State),
	}
}

func (a *Assembler) translate(log logging.Logger, field string, domain codes.Domain, raw string) string {
	display, ok := a.registry.Lookup(domain, raw)
	if ok {
		return display
	}
	log.Debug("Code not translated",
		logging.F(logging.FieldField, field),
		logging.F(logging.FieldDomain, string(domain)),
		logging.F(logging.FieldCode, raw))
	if a.OnMiss != nil {
		a.OnMiss(field)
	}
	return codes.Unknown
}

// FormatAddress renders an address for the report; nil or empty yields "".
func FormatAddress(address *models.Address) string {
	if address == nil || address.IsEmpty() {
		return ""
	}
	return address.String()
}
