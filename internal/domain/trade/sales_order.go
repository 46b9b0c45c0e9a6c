package trade

import (
	"github.com/google/uuid"
)

// OrderState represents the state of a sales order in the host system
type OrderState string

const (
	OrderStateDraft     OrderState = "draft"
	OrderStateSent      OrderState = "sent"
	OrderStateSale      OrderState = "sale"
	OrderStateDone      OrderState = "done"
	OrderStateCancelled OrderState = "cancel"
)

// IsValid checks if the state is a known OrderState
func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateDraft, OrderStateSent, OrderStateSale, OrderStateDone, OrderStateCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderState
func (s OrderState) String() string {
	return string(s)
}

// SalesOrder is the subset of a host sales order that payment matching needs.
// Name is the human-readable order identifier, e.g. "SO-202511-6722" or "S00042".
type SalesOrder struct {
	ID        uuid.UUID
	Name      string
	PartnerID uuid.UUID
	State     OrderState
}

// SalesOrderNames returns the names of the given orders
func SalesOrderNames(orders []SalesOrder) []string {
	names := make([]string, len(orders))
	for i, o := range orders {
		names[i] = o.Name
	}
	return names
}
