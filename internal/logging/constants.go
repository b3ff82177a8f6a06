package logging

// Field names shared across the engine so log output can be filtered consistently.
const (
	FieldComponent          = "component"
	FieldPolicyNumber       = "policy_number"
	FieldTaxablePartyNumber = "taxable_party_number"
	FieldTransactionID      = "transaction_id"
	FieldDomain             = "domain"
	FieldCode               = "code"
	FieldField              = "field"
	FieldValue              = "value"
	FieldStep               = "step"
	FieldCount              = "count"
	FieldDuration           = "duration_ms"
	FieldWorkers            = "worker_count"
	FieldWindowStart        = "window_start"
	FieldWindowEnd          = "window_end"
	FieldRequestID          = "request_id"
	FieldPath               = "path"
	FieldMethod             = "method"
	FieldStatus             = "status"
	FieldOutputFile         = "output_file"
	FieldResource           = "resource"
)
