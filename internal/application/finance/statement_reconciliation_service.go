package finance

import (
	"context"
	"errors"
	"time"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/domain/trade"
	"github.com/erp/soreconcile/internal/infrastructure/logger"
	"github.com/erp/soreconcile/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatementReconciliationService matches a bank statement line that the host
// left unreconciled to the unpaid invoices of the sales order named in its
// payment reference. There is no numeric search and no partial fallback.
type StatementReconciliationService struct {
	matcher    *salesOrderMatcher
	lines      finance.MoveLineRepository
	reconciler finance.Reconciler
	recorder   OutcomeRecorder
	logger     *zap.Logger
}

// NewStatementReconciliationService creates a new StatementReconciliationService
func NewStatementReconciliationService(
	orders trade.SalesOrderRepository,
	invoices finance.InvoiceRepository,
	lines finance.MoveLineRepository,
	reconciler finance.Reconciler,
	logger *zap.Logger,
	opts ...ServiceOption,
) *StatementReconciliationService {
	o := newServiceOptions(opts)
	return &StatementReconciliationService{
		matcher:    &salesOrderMatcher{orders: orders, invoices: invoices},
		lines:      lines,
		reconciler: reconciler,
		recorder:   o.recorder,
		logger:     logger,
	}
}

// ReconcileStatementLine runs one reconciliation attempt for the line
func (s *StatementReconciliationService) ReconcileStatementLine(ctx context.Context, line *finance.BankStatementLine) *finance.ReconciliationOutcome {
	if line == nil {
		return finance.NewOutcome(finance.PathStatementLine, uuid.Nil, "").Finish(finance.OutcomeSkipped, "no statement line")
	}

	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "statement_reconciliation", "reconcile",
		telemetry.WithAttribute(telemetry.SpanAttrStatementLineID, line.ID.String()),
	)
	defer span.End()

	var outcome *finance.ReconciliationOutcome
	telemetry.ProfileAttempt(ctx, string(finance.PathStatementLine), func(ctx context.Context) {
		outcome = s.reconcile(ctx, line)
	})

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, string(outcome.Status),
		telemetry.SpanAttrReference, outcome.Reference,
		telemetry.SpanAttrSalesOrder, outcome.SalesOrder,
	)
	markSpan(span, outcome)
	s.recorder.RecordOutcome(ctx, string(outcome.Path), string(outcome.Status), time.Since(start))
	return outcome
}

func (s *StatementReconciliationService) reconcile(ctx context.Context, line *finance.BankStatementLine) *finance.ReconciliationOutcome {
	outcome := finance.NewOutcome(finance.PathStatementLine, line.ID, line.PaymentRef)
	log := logger.WithLogger(ctx, s.logger).With(zap.String("statement_line_id", line.ID.String()))

	if !line.NeedsMatching() {
		log.Debug("statement line already reconciled or has no payment reference")
		return outcome.Finish(finance.OutcomeSkipped, "")
	}

	reference, ok := finance.ExtractSalesOrderReference(line.PaymentRef)
	if !ok {
		log.Debug("no sales order reference in payment reference", zap.String("payment_ref", line.PaymentRef))
		return outcome.Finish(finance.OutcomeNoReference, "")
	}
	outcome.Reference = reference
	outcome.ReferenceSource = finance.ReferenceSourceStatementRef
	log = log.With(zap.String("so_reference", reference))

	order, err := s.matcher.resolve(ctx, reference, false)
	if errors.Is(err, shared.ErrNotFound) {
		log.Debug("sales order not found")
		return outcome.Finish(finance.OutcomeSalesOrderNotFound, "")
	}
	if err != nil {
		log.Error("failed to resolve sales order", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}
	outcome.SalesOrder = order.Name
	log = log.With(zap.String("sales_order", order.Name))

	invoices, _, err := s.matcher.openInvoices(ctx, order)
	if err != nil {
		log.Error("failed to load invoices", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}
	if len(invoices) == 0 {
		log.Debug("no unpaid invoices for sales order")
		return outcome.Finish(finance.OutcomeNoUnpaidInvoices, "")
	}
	outcome.Invoices = finance.InvoiceNames(invoices)

	if !line.HasJournalEntry() {
		log.Debug("statement line has no journal entry")
		return outcome.Finish(finance.OutcomeNoJournalEntry, "")
	}

	moveLines, err := s.lines.FindByMove(ctx, *line.MoveID)
	if err != nil {
		log.Error("failed to load statement lines", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}
	invoiceMoveLines, err := s.lines.FindByMoves(ctx, finance.InvoiceIDs(invoices))
	if err != nil {
		log.Error("failed to load invoice lines", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}

	statementLines := moveLines.OpenReceivable()
	invoiceLines := invoiceMoveLines.OpenReceivable()
	if len(statementLines) == 0 || len(invoiceLines) == 0 {
		return outcome.Finish(finance.OutcomeNoEligibleLines, "")
	}

	lines := statementLines.Union(invoiceLines)
	outcome.LineIDs = lines.IDs()
	if _, err := s.reconciler.Reconcile(ctx, lines); err != nil {
		log.Debug("statement line reconciliation refused", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}

	log.Info("bank statement line reconciled with sales order")
	return outcome.Finish(finance.OutcomeReconciled, "")
}
