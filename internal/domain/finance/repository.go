package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository is the read side of the host payment store
type PaymentRepository interface {
	// FindByID returns shared.ErrNotFound if no payment has the given ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
}

// BankStatementLineRepository is the read side of the host statement line store
type BankStatementLineRepository interface {
	// FindByID returns shared.ErrNotFound if no line has the given ID
	FindByID(ctx context.Context, id uuid.UUID) (*BankStatementLine, error)
}

// InvoiceRepository is the read side of the host invoice store
type InvoiceRepository interface {
	// FindPostedByName returns the posted customer invoice with exactly this
	// name, or shared.ErrNotFound
	FindPostedByName(ctx context.Context, name string) (*Invoice, error)

	// FindUnpaidByPartner returns the partner's posted customer invoices that
	// are not or partially paid, newest first by date, at most limit of them
	FindUnpaidByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]Invoice, error)

	// FindBySalesOrder returns every invoice linked to the sales order,
	// regardless of state
	FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) ([]Invoice, error)
}

// MoveLineRepository is the read side of the host ledger lines
type MoveLineRepository interface {
	// FindByMove returns the lines of one journal entry
	FindByMove(ctx context.Context, moveID uuid.UUID) (MoveLines, error)

	// FindByMoves returns the lines of several journal entries, ordered by
	// entry then line
	FindByMoves(ctx context.Context, moveIDs []uuid.UUID) (MoveLines, error)
}

// Reconciler exposes the ledger's reconciliation primitives
type Reconciler interface {
	// Reconcile fully reconciles the lines as one group. It fails with
	// ErrReconciliationRejected when the ledger refuses the set.
	Reconcile(ctx context.Context, lines MoveLines) (*Reconciliation, error)

	// CreatePartialReconciliation settles up to amount between a debit line and
	// a credit line, capped by their open residuals. The returned record holds
	// the amount actually settled.
	CreatePartialReconciliation(ctx context.Context, debitLineID, creditLineID uuid.UUID, amount decimal.Decimal) (*PartialReconciliation, error)
}
