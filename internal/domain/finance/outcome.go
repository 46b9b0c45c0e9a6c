package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutcomeStatus is the terminal status of one reconciliation attempt
type OutcomeStatus string

const (
	OutcomeNoReference         OutcomeStatus = "NO_REFERENCE"
	OutcomeSalesOrderNotFound  OutcomeStatus = "SALES_ORDER_NOT_FOUND"
	OutcomeNoUnpaidInvoices    OutcomeStatus = "NO_UNPAID_INVOICES"
	OutcomeNoEligibleLines     OutcomeStatus = "NO_ELIGIBLE_LINES"
	OutcomeNoJournalEntry      OutcomeStatus = "NO_JOURNAL_ENTRY"
	OutcomeReconciled          OutcomeStatus = "RECONCILED"
	OutcomePartiallyReconciled OutcomeStatus = "PARTIALLY_RECONCILED"
	OutcomeFailed              OutcomeStatus = "FAILED"
	OutcomeSkipped             OutcomeStatus = "SKIPPED"
)

// String returns the string representation of OutcomeStatus
func (s OutcomeStatus) String() string {
	return string(s)
}

// Changed reports whether the attempt wrote anything to the ledger
func (s OutcomeStatus) Changed() bool {
	return s == OutcomeReconciled || s == OutcomePartiallyReconciled
}

// AllOutcomeStatuses returns all outcome statuses
func AllOutcomeStatuses() []OutcomeStatus {
	return []OutcomeStatus{
		OutcomeNoReference,
		OutcomeSalesOrderNotFound,
		OutcomeNoUnpaidInvoices,
		OutcomeNoEligibleLines,
		OutcomeNoJournalEntry,
		OutcomeReconciled,
		OutcomePartiallyReconciled,
		OutcomeFailed,
		OutcomeSkipped,
	}
}

// ReconciliationPath identifies which hook triggered an attempt
type ReconciliationPath string

const (
	PathPayment       ReconciliationPath = "payment"
	PathStatementLine ReconciliationPath = "statement_line"
)

// ReconciliationOutcome describes what one attempt found and did.
// It is informational only; the ledger is the source of truth.
type ReconciliationOutcome struct {
	Path            ReconciliationPath `json:"path"`
	SourceID        uuid.UUID          `json:"source_id"`
	SourceName      string             `json:"source_name,omitempty"`
	Status          OutcomeStatus      `json:"status"`
	Reference       string             `json:"reference,omitempty"`
	ReferenceSource ReferenceSource    `json:"reference_source,omitempty"`
	SalesOrder      string             `json:"sales_order,omitempty"`
	Invoices        []string           `json:"invoices,omitempty"`
	LineIDs         []uuid.UUID        `json:"line_ids,omitempty"`
	PartialAmount   *decimal.Decimal   `json:"partial_amount,omitempty"`
	Detail          string             `json:"detail,omitempty"`
}

// NewOutcome starts an outcome for the given path and source record
func NewOutcome(path ReconciliationPath, sourceID uuid.UUID, sourceName string) *ReconciliationOutcome {
	return &ReconciliationOutcome{
		Path:       path,
		SourceID:   sourceID,
		SourceName: sourceName,
	}
}

// Finish sets the terminal status and an optional detail message
func (o *ReconciliationOutcome) Finish(status OutcomeStatus, detail string) *ReconciliationOutcome {
	o.Status = status
	o.Detail = detail
	return o
}

// Reconciliation is a full reconciliation group written by the ledger
type Reconciliation struct {
	ID      uuid.UUID
	LineIDs []uuid.UUID
}

// PartialReconciliation settles Amount between a debit line and a credit line
type PartialReconciliation struct {
	ID               uuid.UUID
	DebitLineID      uuid.UUID
	CreditLineID     uuid.UUID
	Amount           decimal.Decimal
	ReconciliationID *uuid.UUID
}
