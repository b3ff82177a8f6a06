// Package models holds the records shared between storage, the party service
// and the report assembler.
package models

import (
	"strings"
	"time"
)

// TransactionRecord is one periodic payout transaction with its raw message image.
type TransactionRecord struct {
	ID           int64      `json:"id" yaml:"id"`
	TransRunDate *time.Time `json:"transRunDate,omitempty" yaml:"transRunDate,omitempty"`
	TransExeDate *time.Time `json:"transExeDate,omitempty" yaml:"transExeDate,omitempty"`
	TransEffDate *time.Time `json:"transEffDate,omitempty" yaml:"transEffDate,omitempty"`
	MessageImage []byte     `json:"-" yaml:"-"`
}

// ProductInfo is the policy metadata printed next to each transaction.
// PolicyStatus and QualPlanType are raw codes.
type ProductInfo struct {
	PolNumber      string `json:"polNumber" yaml:"polNumber"`
	ManagementCode string `json:"managementCode" yaml:"managementCode"`
	PolicyStatus   string `json:"policyStatus" yaml:"policyStatus"`
	ProductCode    string `json:"productCode" yaml:"productCode"`
	QualPlanType   string `json:"qualPlanType" yaml:"qualPlanType"`
}

// IsEmpty returns true if no policy metadata was found.
func (p ProductInfo) IsEmpty() bool {
	return strings.TrimSpace(p.ManagementCode) == "" &&
		strings.TrimSpace(p.PolicyStatus) == "" &&
		strings.TrimSpace(p.ProductCode) == "" &&
		strings.TrimSpace(p.QualPlanType) == ""
}
