package dto

import (
	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// PaymentPostedHookRequest is sent by the host after it posts a payment.
// EventID makes redelivery of the same hook idempotent; when omitted every
// call is treated as a new event.
type PaymentPostedHookRequest struct {
	PaymentID string `json:"payment_id" binding:"required,uuid"`
	EventID   string `json:"event_id" binding:"omitempty,uuid"`
}

// StatementLineReconciledHookRequest is sent by the host after it reconciled
// a bank statement line
type StatementLineReconciledHookRequest struct {
	StatementLineID string `json:"statement_line_id" binding:"required,uuid"`
	EventID         string `json:"event_id" binding:"omitempty,uuid"`
}

// HookAcceptedResponse acknowledges a published hook event
type HookAcceptedResponse struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
}

// MoveLineValuesDTO is one generated ledger line
type MoveLineValuesDTO struct {
	Name        string          `json:"name"`
	AccountType string          `json:"account_type,omitempty" binding:"omitempty,account_type"`
	Debit       decimal.Decimal `json:"debit" binding:"gte=0"`
	Credit      decimal.Decimal `json:"credit" binding:"gte=0"`
}

// MoveLineDefaultsRequest carries the host's generated line values for a
// statement line
type MoveLineDefaultsRequest struct {
	StatementLineID string              `json:"statement_line_id" binding:"omitempty,uuid"`
	PaymentRef      string              `json:"payment_ref" binding:"max=512"`
	Lines           []MoveLineValuesDTO `json:"lines" binding:"required,min=1,dive"`
}

// MoveLineDefaultsResponse returns the line values with the description stamped
type MoveLineDefaultsResponse struct {
	Lines []MoveLineValuesDTO `json:"lines"`
}

// ReferenceExtractRequest is the query of the extractor preview endpoint
type ReferenceExtractRequest struct {
	Text string `form:"text" binding:"max=1024"`
}

// ReferenceExtractResponse reports the extracted sales order reference
type ReferenceExtractResponse struct {
	Text             string `json:"text"`
	Found            bool   `json:"found"`
	Reference        string `json:"reference,omitempty"`
	NumericReference string `json:"numeric_reference,omitempty"`
}

// ToMoveLineValues converts request lines to domain values
func ToMoveLineValues(lines []MoveLineValuesDTO) []finance.MoveLineValues {
	vals := make([]finance.MoveLineValues, len(lines))
	for i, l := range lines {
		vals[i] = finance.MoveLineValues{
			Name:        l.Name,
			AccountType: finance.AccountType(l.AccountType),
			Debit:       l.Debit,
			Credit:      l.Credit,
		}
	}
	return vals
}

// FromMoveLineValues converts domain values to response lines
func FromMoveLineValues(vals []finance.MoveLineValues) []MoveLineValuesDTO {
	lines := make([]MoveLineValuesDTO, len(vals))
	for i, v := range vals {
		lines[i] = MoveLineValuesDTO{
			Name:        v.Name,
			AccountType: string(v.AccountType),
			Debit:       v.Debit,
			Credit:      v.Credit,
		}
	}
	return lines
}
