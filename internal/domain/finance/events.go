package finance

import (
	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypePayment           = "Payment"
	AggregateTypeBankStatementLine = "BankStatementLine"
)

// Event type constants
const (
	EventTypePaymentPosted           = "PaymentPosted"
	EventTypeStatementLineReconciled = "BankStatementLineReconciled"
)

// PaymentPostedEvent is raised after the host posts a payment
type PaymentPostedEvent struct {
	shared.BaseDomainEvent
	Payment Payment `json:"payment"`
}

// NewPaymentPostedEvent creates a new PaymentPostedEvent. eventID may be
// uuid.Nil, in which case a fresh ID is generated.
func NewPaymentPostedEvent(eventID uuid.UUID, payment *Payment) *PaymentPostedEvent {
	return &PaymentPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEventWithID(eventID, EventTypePaymentPosted, AggregateTypePayment, payment.ID),
		Payment:         *payment,
	}
}

// EventType returns the event type name
func (e *PaymentPostedEvent) EventType() string {
	return EventTypePaymentPosted
}

// StatementLineReconciledEvent is raised after the host runs its own
// reconciliation for a bank statement line
type StatementLineReconciledEvent struct {
	shared.BaseDomainEvent
	Line BankStatementLine `json:"line"`
}

// NewStatementLineReconciledEvent creates a new StatementLineReconciledEvent
func NewStatementLineReconciledEvent(eventID uuid.UUID, line *BankStatementLine) *StatementLineReconciledEvent {
	return &StatementLineReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEventWithID(eventID, EventTypeStatementLineReconciled, AggregateTypeBankStatementLine, line.ID),
		Line:            *line,
	}
}

// EventType returns the event type name
func (e *StatementLineReconciledEvent) EventType() string {
	return EventTypeStatementLineReconciled
}
