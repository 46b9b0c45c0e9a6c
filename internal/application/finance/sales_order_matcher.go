package finance

import (
	"context"
	"fmt"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/domain/trade"
	"github.com/erp/soreconcile/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// salesOrderMatcher resolves a reference to a sales order and collects the
// order's open invoices. Both reconciliation paths share it.
type salesOrderMatcher struct {
	orders   trade.SalesOrderRepository
	invoices finance.InvoiceRepository
}

// resolve finds the sales order for a reference. An exact or case-insensitive
// substring match on the order name wins; with numericFallback the digits of
// the reference are searched next. Returns shared.ErrNotFound if nothing matches.
func (m *salesOrderMatcher) resolve(ctx context.Context, reference string, numericFallback bool) (*trade.SalesOrder, error) {
	orders, err := m.orders.FindByNameMatch(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("search sales order %q: %w", reference, err)
	}
	if len(orders) > 0 {
		return resolved(ctx, &orders[0], "name"), nil
	}

	if !numericFallback {
		return nil, shared.ErrNotFound
	}
	digits := finance.NumericReference(reference)
	if digits == "" {
		return nil, shared.ErrNotFound
	}
	orders, err = m.orders.FindByNameContaining(ctx, digits)
	if err != nil {
		return nil, fmt.Errorf("search sales order by digits %q: %w", digits, err)
	}
	if len(orders) == 0 {
		return nil, shared.ErrNotFound
	}
	return resolved(ctx, &orders[0], "digits"), nil
}

func resolved(ctx context.Context, order *trade.SalesOrder, via string) *trade.SalesOrder {
	telemetry.AddEvent(trace.SpanFromContext(ctx), "sales_order_resolved",
		telemetry.SpanAttrSalesOrder, order.Name,
		"match", via,
	)
	return order
}

// openInvoices returns the order's open customer invoices and, for
// diagnostics, every invoice linked to the order.
func (m *salesOrderMatcher) openInvoices(ctx context.Context, order *trade.SalesOrder) (open, all []finance.Invoice, err error) {
	all, err = m.invoices.FindBySalesOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load invoices of %s: %w", order.Name, err)
	}
	return finance.OpenCustomerInvoices(all), all, nil
}

// markSpan sets the attempt span status: ok when the ledger changed, failed
// on FAILED, unset otherwise.
func markSpan(span trace.Span, outcome *finance.ReconciliationOutcome) {
	switch {
	case outcome.Status.Changed():
		telemetry.SetOK(span)
	case outcome.Status == finance.OutcomeFailed:
		telemetry.SetFailed(span, outcome.Detail)
	}
}

func paymentStates(invoices []finance.Invoice) []string {
	states := make([]string, len(invoices))
	for i, inv := range invoices {
		states[i] = string(inv.PaymentState)
	}
	return states
}
