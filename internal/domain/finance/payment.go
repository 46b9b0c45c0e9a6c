package finance

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerType tells whether a payment comes from a customer or goes to a supplier
type PartnerType string

const (
	PartnerTypeCustomer PartnerType = "customer"
	PartnerTypeSupplier PartnerType = "supplier"
)

// PaymentStatus is the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusDraft     PaymentStatus = "draft"
	PaymentStatusPosted    PaymentStatus = "posted"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment is a host ledger payment. MoveID is its posted journal entry.
type Payment struct {
	ID          uuid.UUID
	Name        string
	Memo        string
	Amount      decimal.Decimal
	PartnerID   uuid.UUID
	PartnerType PartnerType
	Status      PaymentStatus
	MoveID      *uuid.UUID
}

// IsPostedCustomerPayment returns true if the payment is eligible for
// sales order matching
func (p *Payment) IsPostedCustomerPayment() bool {
	return p.PartnerType == PartnerTypeCustomer && p.Status == PaymentStatusPosted
}

// HasJournalEntry returns true if the payment has been posted to the ledger
func (p *Payment) HasJournalEntry() bool {
	return p.MoveID != nil && *p.MoveID != uuid.Nil
}

// BankStatementLine is an imported bank transaction
type BankStatementLine struct {
	ID           uuid.UUID
	PaymentRef   string
	Amount       decimal.Decimal
	PartnerID    *uuid.UUID
	MoveID       *uuid.UUID
	IsReconciled bool
}

// NeedsMatching returns true for lines that are still open and carry a
// payment reference to match on
func (l *BankStatementLine) NeedsMatching() bool {
	return !l.IsReconciled && strings.TrimSpace(l.PaymentRef) != ""
}

// HasJournalEntry returns true if the line has a generated journal entry
func (l *BankStatementLine) HasJournalEntry() bool {
	return l.MoveID != nil && *l.MoveID != uuid.Nil
}
