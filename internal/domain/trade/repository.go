package trade

import (
	"context"

	"github.com/google/uuid"
)

// SalesOrderRepository is the read side of the host sales order store
type SalesOrderRepository interface {
	// FindByID returns shared.ErrNotFound if no order has the given ID
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByNameMatch returns the orders whose name equals the reference or
	// contains it, case-insensitive. Exact matches come first.
	FindByNameMatch(ctx context.Context, reference string) ([]SalesOrder, error)

	// FindByNameContaining returns the orders whose name contains the fragment,
	// case-insensitive.
	FindByNameContaining(ctx context.Context, fragment string) ([]SalesOrder, error)

	// FindByInvoice returns the orders linked to the invoice through its lines
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]SalesOrder, error)
}
