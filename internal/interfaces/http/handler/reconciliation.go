package handler

import (
	"fmt"

	appfinance "github.com/erp/soreconcile/internal/application/finance"
	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/infrastructure/logger"
	"github.com/erp/soreconcile/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MoveLineDefaulter implements the "build default ledger-line values" hook
type MoveLineDefaulter interface {
	PrepareMoveLineDefaults(line *finance.BankStatementLine, vals []finance.MoveLineValues) []finance.MoveLineValues
}

// ReconciliationHandler serves the host hooks and the operator endpoints
type ReconciliationHandler struct {
	BaseHandler
	payments            finance.PaymentRepository
	statementLines      finance.BankStatementLineRepository
	publisher           shared.EventPublisher
	paymentReconciler   appfinance.PaymentReconciler
	statementReconciler appfinance.StatementLineReconciler
	labeler             MoveLineDefaulter
	logger              *zap.Logger
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(
	payments finance.PaymentRepository,
	statementLines finance.BankStatementLineRepository,
	publisher shared.EventPublisher,
	paymentReconciler appfinance.PaymentReconciler,
	statementReconciler appfinance.StatementLineReconciler,
	labeler MoveLineDefaulter,
	logger *zap.Logger,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		payments:            payments,
		statementLines:      statementLines,
		publisher:           publisher,
		paymentReconciler:   paymentReconciler,
		statementReconciler: statementReconciler,
		labeler:             labeler,
		logger:              logger,
	}
}

// PaymentPosted publishes a PaymentPostedEvent for the payment and returns
// 202. The reconciliation outcome is logged, not returned to the host.
func (h *ReconciliationHandler) PaymentPosted(c *gin.Context) {
	var req dto.PaymentPostedHookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	payment, err := h.payments.FindByID(ctx, uuid.MustParse(req.PaymentID))
	if err != nil {
		h.HandleError(c, fmt.Errorf("load payment %s: %w", req.PaymentID, err))
		return
	}

	event := finance.NewPaymentPostedEvent(parseEventID(req.EventID), payment)
	h.publish(c, event)
}

// StatementLineReconciled publishes a StatementLineReconciledEvent and returns 202
func (h *ReconciliationHandler) StatementLineReconciled(c *gin.Context) {
	var req dto.StatementLineReconciledHookRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	line, err := h.statementLines.FindByID(ctx, uuid.MustParse(req.StatementLineID))
	if err != nil {
		h.HandleError(c, fmt.Errorf("load statement line %s: %w", req.StatementLineID, err))
		return
	}

	event := finance.NewStatementLineReconciledEvent(parseEventID(req.EventID), line)
	h.publish(c, event)
}

func (h *ReconciliationHandler) publish(c *gin.Context, event shared.DomainEvent) {
	ctx := c.Request.Context()
	if err := h.publisher.Publish(ctx, event); err != nil {
		logger.WithLogger(ctx, h.logger).Warn("hook event not published",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err),
		)
		h.HandleError(c, err)
		return
	}

	h.Accepted(c, dto.HookAcceptedResponse{
		EventID:   event.EventID().String(),
		EventType: event.EventType(),
	})
}

// MoveLineDefaults stamps the statement line's payment reference into the
// first generated line. When only statement_line_id is given the reference
// is read from the stored line.
func (h *ReconciliationHandler) MoveLineDefaults(c *gin.Context) {
	var req dto.MoveLineDefaultsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := &finance.BankStatementLine{PaymentRef: req.PaymentRef}
	if req.StatementLineID != "" {
		id := uuid.MustParse(req.StatementLineID)
		if req.PaymentRef == "" {
			stored, err := h.statementLines.FindByID(c.Request.Context(), id)
			if err != nil {
				h.HandleError(c, fmt.Errorf("load statement line %s: %w", req.StatementLineID, err))
				return
			}
			line = stored
		} else {
			line.ID = id
		}
	}

	vals := h.labeler.PrepareMoveLineDefaults(line, dto.ToMoveLineValues(req.Lines))
	h.Success(c, dto.MoveLineDefaultsResponse{Lines: dto.FromMoveLineValues(vals)})
}

// RerunPayment runs the payment path synchronously and returns the outcome.
// No idempotency applies; a reconciled payment simply yields no eligible lines.
func (h *ReconciliationHandler) RerunPayment(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	ctx := c.Request.Context()
	payment, err := h.payments.FindByID(ctx, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, fmt.Errorf("load payment %s: %w", uri.ID, err))
		return
	}
	if !payment.IsPostedCustomerPayment() {
		h.HandleError(c, shared.NewDomainError(shared.ErrInvalidState.Code, "only posted customer payments can be reconciled"))
		return
	}

	h.Success(c, h.paymentReconciler.ReconcilePayment(ctx, payment))
}

// RerunStatementLine runs the bank statement path synchronously and returns the outcome
func (h *ReconciliationHandler) RerunStatementLine(c *gin.Context) {
	var uri dto.IDRequest
	if !h.BindURI(c, &uri) {
		return
	}

	ctx := c.Request.Context()
	line, err := h.statementLines.FindByID(ctx, uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, fmt.Errorf("load statement line %s: %w", uri.ID, err))
		return
	}

	h.Success(c, h.statementReconciler.ReconcileStatementLine(ctx, line))
}

// ExtractReference previews what the extractor finds in a piece of text
func (h *ReconciliationHandler) ExtractReference(c *gin.Context) {
	var req dto.ReferenceExtractRequest
	if !h.BindQuery(c, &req) {
		return
	}

	resp := dto.ReferenceExtractResponse{Text: req.Text}
	if reference, ok := finance.ExtractSalesOrderReference(req.Text); ok {
		resp.Found = true
		resp.Reference = reference
		resp.NumericReference = finance.NumericReference(reference)
	}
	h.Success(c, resp)
}

// parseEventID returns uuid.Nil for an empty ID; binding already validated the format
func parseEventID(raw string) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	return uuid.MustParse(raw)
}

