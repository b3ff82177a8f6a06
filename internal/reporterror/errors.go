// Package reporterror defines the typed errors raised while building payout reports.
package reporterror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNoData is returned when a report window yields no transactions.
var ErrNoData = errors.New("no data found for the report")

// DecodeError reports a snapshot document that could not be decoded at all.
type DecodeError struct {
	TransactionID int64
	Err           error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("transaction %d: failed to decode message image: %v", e.TransactionID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FieldError reports a single field that failed to parse and was defaulted.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("failed to parse %s='%s': %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// CorrelationError reports a storage failure while resolving a policy's ledger.
type CorrelationError struct {
	Step         string
	PolicyNumber string
	Err          error
}

func (e *CorrelationError) Error() string {
	return fmt.Sprintf("correlating policy %s at %s: %v", e.PolicyNumber, e.Step, e.Err)
}

func (e *CorrelationError) Unwrap() error {
	return e.Err
}

// PartyError reports a failed address lookup for a party.
type PartyError struct {
	PartyNumber string
	Err         error
}

func (e *PartyError) Error() string {
	return fmt.Sprintf("party %s: %v", e.PartyNumber, e.Err)
}

func (e *PartyError) Unwrap() error {
	return e.Err
}

// RegistryError collects every code table that failed to load.
type RegistryError struct {
	Failures map[string]error
}

func (e *RegistryError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failures[name]))
	}
	return fmt.Sprintf("code registry failed to load %d table(s): %s", len(names), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is / errors.As.
func (e *RegistryError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, err := range e.Failures {
		out = append(out, err)
	}
	return out
}
