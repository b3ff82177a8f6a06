// Package report assembles and writes the periodic payout YTD report.
package report

// ErrorRowText is the only cell of the row emitted for an undecodable message image.
const ErrorRowText = "Error processing JSON"

// Row is one report line. Field order is column order.
type Row struct {
	RunYear                 string `csv:"runYear" json:"runYear"`
	TransRunDate            string `csv:"transRunDate" json:"transRunDate"`
	TransExeDate            string `csv:"transExeDate" json:"transExeDate"`
	ManagementCode          string `csv:"Management Code" json:"managementCode"`
	ProductCode             string `csv:"Product Code" json:"productCode"`
	PolNumber               string `csv:"polNumber" json:"polNumber"`
	PolicyStatus            string `csv:"Policy Status" json:"policyStatus"`
	QualPlanType            string `csv:"QualPlanType" json:"qualPlanType"`
	SuspendCode             string `csv:"Suspend Code" json:"suspendCode"`
	PartyID                 string `csv:"Party ID" json:"partyId"`
	PartyFullName           string `csv:"Party Full Name" json:"partyFullName"`
	GovtID                  string `csv:"Govt ID" json:"govtId"`
	GovtIDStatus            string `csv:"Govt ID Status" json:"govtIdStatus"`
	GovtIDType              string `csv:"govt ID Type Code" json:"govtIdTypeCode"`
	PayeeStatus             string `csv:"payeeStatus" json:"payeeStatus"`
	ResidenceState          string `csv:"Residence State" json:"residenceState"`
	ResidenceCountry        string `csv:"Residence Country" json:"residenceCountry"`
	PreferredMailingAddress string `csv:"preferredMailingAddress" json:"preferredMailingAddress"`
	MailingAddress          string `csv:"mailingAddress" json:"mailingAddress"`
	YTDGross                string `csv:"YTD Gross amount" json:"ytdGrossAmount"`
	YTDFederal              string `csv:"YTD federal amount" json:"ytdFederalAmount"`
	YTDState                string `csv:"YTD State amount" json:"ytdStateAmount"`

	// Failed marks the error marker row.
	Failed bool `csv:"-" json:"failed,omitempty"`
}

// Headers returns the column headers in order.
func Headers() []string {
	return []string{
		"runYear", "transRunDate", "transExeDate", "Management Code", "Product Code",
		"polNumber", "Policy Status", "QualPlanType", "Suspend Code", "Party ID",
		"Party Full Name", "Govt ID", "Govt ID Status", "govt ID Type Code", "payeeStatus",
		"Residence State", "Residence Country", "preferredMailingAddress", "mailingAddress",
		"YTD Gross amount", "YTD federal amount", "YTD State amount",
	}
}

// ErrorRow returns the marker row for an undecodable message image.
func ErrorRow() Row {
	return Row{Failed: true}
}

// Values returns the cells of the row in column order. The error marker row
// has a single cell.
func (r Row) Values() []string {
	if r.Failed {
		return []string{ErrorRowText}
	}
	return []string{
		r.RunYear, r.TransRunDate, r.TransExeDate, r.ManagementCode, r.ProductCode,
		r.PolNumber, r.PolicyStatus, r.QualPlanType, r.SuspendCode, r.PartyID,
		r.PartyFullName, r.GovtID, r.GovtIDStatus, r.GovtIDType, r.PayeeStatus,
		r.ResidenceState, r.ResidenceCountry, r.PreferredMailingAddress, r.MailingAddress,
		r.YTDGross, r.YTDFederal, r.YTDState,
	}
}
