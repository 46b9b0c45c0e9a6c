package finance

import (
	"context"
	"fmt"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentReconciler runs the payment reconciliation path
type PaymentReconciler interface {
	ReconcilePayment(ctx context.Context, payment *finance.Payment) *finance.ReconciliationOutcome
}

// PaymentPostedHandler handles PaymentPostedEvent and triggers sales order
// reconciliation for posted customer payments
type PaymentPostedHandler struct {
	reconciler PaymentReconciler
	logger     *zap.Logger
}

// NewPaymentPostedHandler creates a new handler for payment posted events
func NewPaymentPostedHandler(reconciler PaymentReconciler, logger *zap.Logger) *PaymentPostedHandler {
	return &PaymentPostedHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentPostedHandler) EventTypes() []string {
	return []string{finance.EventTypePaymentPosted}
}

// Handle processes a PaymentPostedEvent. Reconciliation problems never fail
// the event; only a wrong event type does.
func (h *PaymentPostedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	postedEvent, ok := event.(*finance.PaymentPostedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", finance.EventTypePaymentPosted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			finance.EventTypePaymentPosted, event.EventType())
	}

	payment := &postedEvent.Payment
	if !payment.IsPostedCustomerPayment() {
		h.logger.Debug("skipping payment that is not a posted customer payment",
			zap.String("payment_id", payment.ID.String()),
			zap.String("partner_type", string(payment.PartnerType)),
			zap.String("status", string(payment.Status)),
		)
		return nil
	}

	outcome := h.reconciler.ReconcilePayment(ctx, payment)
	h.logger.Info("payment reconciliation finished",
		zap.String("event_id", event.EventID().String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("outcome", string(outcome.Status)),
	)
	return nil
}

// Ensure PaymentPostedHandler implements shared.EventHandler
var _ shared.EventHandler = (*PaymentPostedHandler)(nil)
