package finance

import "github.com/erp/soreconcile/internal/domain/shared"

// Ledger errors
var (
	ErrReconciliationRejected = shared.NewDomainError("RECONCILIATION_REJECTED", "Ledger refused to reconcile the lines")
	ErrLineNotReconcilable    = shared.NewDomainError("LINE_NOT_RECONCILABLE", "Line is already reconciled or not on a receivable account")
	ErrInvalidPartialAmount   = shared.NewDomainError("INVALID_PARTIAL_AMOUNT", "Partial reconciliation amount must be positive")
)
