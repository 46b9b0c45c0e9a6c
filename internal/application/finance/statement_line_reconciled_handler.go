package finance

import (
	"context"
	"fmt"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/shared"
	"go.uber.org/zap"
)

// StatementLineReconciler runs the bank statement reconciliation path
type StatementLineReconciler interface {
	ReconcileStatementLine(ctx context.Context, line *finance.BankStatementLine) *finance.ReconciliationOutcome
}

// StatementLineReconciledHandler handles StatementLineReconciledEvent
type StatementLineReconciledHandler struct {
	reconciler StatementLineReconciler
	logger     *zap.Logger
}

// NewStatementLineReconciledHandler creates a new handler for statement line events
func NewStatementLineReconciledHandler(reconciler StatementLineReconciler, logger *zap.Logger) *StatementLineReconciledHandler {
	return &StatementLineReconciledHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StatementLineReconciledHandler) EventTypes() []string {
	return []string{finance.EventTypeStatementLineReconciled}
}

// Handle processes a StatementLineReconciledEvent
func (h *StatementLineReconciledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lineEvent, ok := event.(*finance.StatementLineReconciledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", finance.EventTypeStatementLineReconciled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			finance.EventTypeStatementLineReconciled, event.EventType())
	}

	outcome := h.reconciler.ReconcileStatementLine(ctx, &lineEvent.Line)
	h.logger.Info("statement line reconciliation finished",
		zap.String("event_id", event.EventID().String()),
		zap.String("statement_line_id", lineEvent.Line.ID.String()),
		zap.String("outcome", string(outcome.Status)),
	)
	return nil
}

// Ensure StatementLineReconciledHandler implements shared.EventHandler
var _ shared.EventHandler = (*StatementLineReconciledHandler)(nil)
