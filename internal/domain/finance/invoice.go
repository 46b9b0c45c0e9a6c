package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoveType distinguishes invoices, credit notes and plain journal entries
type MoveType string

const (
	MoveTypeOutInvoice MoveType = "out_invoice"
	MoveTypeOutRefund  MoveType = "out_refund"
	MoveTypeInInvoice  MoveType = "in_invoice"
	MoveTypeInRefund   MoveType = "in_refund"
	MoveTypeEntry      MoveType = "entry"
)

// IsCustomerDocument returns true for customer invoices and customer credit notes
func (t MoveType) IsCustomerDocument() bool {
	return t == MoveTypeOutInvoice || t == MoveTypeOutRefund
}

// InvoiceState is the lifecycle state of an invoice
type InvoiceState string

const (
	InvoiceStateDraft  InvoiceState = "draft"
	InvoiceStatePosted InvoiceState = "posted"
	InvoiceStateCancel InvoiceState = "cancel"
)

// PaymentState is the settlement status of an invoice
type PaymentState string

const (
	PaymentStateNotPaid   PaymentState = "not_paid"
	PaymentStatePartial   PaymentState = "partial"
	PaymentStateInPayment PaymentState = "in_payment"
	PaymentStatePaid      PaymentState = "paid"
	PaymentStateReversed  PaymentState = "reversed"
)

// IsOutstanding returns true if money is still owed on the invoice
func (s PaymentState) IsOutstanding() bool {
	return s == PaymentStateNotPaid || s == PaymentStatePartial
}

// OutstandingPaymentStates lists the payment states that still accept payments
func OutstandingPaymentStates() []PaymentState {
	return []PaymentState{PaymentStateNotPaid, PaymentStatePartial}
}

// Invoice is a host ledger invoice (an account move of an invoice type).
// Its ledger lines are the MoveLines whose MoveID equals the invoice ID.
type Invoice struct {
	ID             uuid.UUID
	Name           string
	MoveType       MoveType
	State          InvoiceState
	PaymentState   PaymentState
	PartnerID      uuid.UUID
	Date           time.Time
	AmountTotal    decimal.Decimal
	AmountResidual decimal.Decimal
	// InvoiceOrigin is the free-text source document field
	InvoiceOrigin string
	// SaleReference is an optional custom link to a sales order name
	SaleReference string
}

// IsOpenCustomerInvoice returns true for posted customer invoices or credit
// notes that are not fully paid. Only these are reconciliation targets.
func (i *Invoice) IsOpenCustomerInvoice() bool {
	return i.State == InvoiceStatePosted &&
		i.MoveType.IsCustomerDocument() &&
		i.PaymentState.IsOutstanding()
}

// SalesOrderReference looks for a sales order reference on the invoice's own
// fields, the origin document first and the custom sale reference second.
func (i *Invoice) SalesOrderReference() (string, ReferenceSource, bool) {
	if ref, ok := ExtractSalesOrderReference(i.InvoiceOrigin); ok {
		return ref, ReferenceSourceInvoiceOrigin, true
	}
	if ref, ok := ExtractSalesOrderReference(i.SaleReference); ok {
		return ref, ReferenceSourceSaleReference, true
	}
	return "", "", false
}

// InvoiceNames returns the names of the given invoices
func InvoiceNames(invoices []Invoice) []string {
	names := make([]string, len(invoices))
	for i, inv := range invoices {
		names[i] = inv.Name
	}
	return names
}

// InvoiceIDs returns the IDs of the given invoices
func InvoiceIDs(invoices []Invoice) []uuid.UUID {
	ids := make([]uuid.UUID, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
	}
	return ids
}
