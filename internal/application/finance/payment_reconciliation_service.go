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
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PaymentReconciliationService matches a posted customer payment to the
// unpaid invoices of a sales order and asks the ledger to reconcile them.
//
// It is best-effort: every lookup or ledger failure is logged and reported
// in the returned outcome, never as an error.
type PaymentReconciliationService struct {
	matcher    *salesOrderMatcher
	orders     trade.SalesOrderRepository
	invoices   finance.InvoiceRepository
	lines      finance.MoveLineRepository
	reconciler finance.Reconciler
	config     finance.MatchingConfig
	recorder   OutcomeRecorder
	logger     *zap.Logger
}

// NewPaymentReconciliationService creates a new PaymentReconciliationService
func NewPaymentReconciliationService(
	orders trade.SalesOrderRepository,
	invoices finance.InvoiceRepository,
	lines finance.MoveLineRepository,
	reconciler finance.Reconciler,
	logger *zap.Logger,
	opts ...ServiceOption,
) *PaymentReconciliationService {
	o := newServiceOptions(opts)
	return &PaymentReconciliationService{
		matcher:    &salesOrderMatcher{orders: orders, invoices: invoices},
		orders:     orders,
		invoices:   invoices,
		lines:      lines,
		reconciler: reconciler,
		config:     o.config,
		recorder:   o.recorder,
		logger:     logger,
	}
}

// ReconcilePayment runs one reconciliation attempt for the payment
func (s *PaymentReconciliationService) ReconcilePayment(ctx context.Context, payment *finance.Payment) *finance.ReconciliationOutcome {
	if payment == nil {
		return finance.NewOutcome(finance.PathPayment, uuid.Nil, "").Finish(finance.OutcomeSkipped, "no payment")
	}

	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_reconciliation", "reconcile",
		telemetry.WithAttribute(telemetry.SpanAttrPaymentID, payment.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, payment.Amount.String()),
	)
	defer span.End()

	var outcome *finance.ReconciliationOutcome
	telemetry.ProfileAttempt(ctx, string(finance.PathPayment), func(ctx context.Context) {
		outcome = s.reconcile(ctx, payment)
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

func (s *PaymentReconciliationService) reconcile(ctx context.Context, payment *finance.Payment) *finance.ReconciliationOutcome {
	outcome := finance.NewOutcome(finance.PathPayment, payment.ID, payment.Name)
	log := logger.WithLogger(ctx, s.logger).With(
		zap.String("payment_id", payment.ID.String()),
		zap.String("payment", payment.Name),
	)

	log.Info("processing payment for sales order reconciliation",
		zap.String("memo", payment.Memo),
		zap.String("amount", payment.Amount.String()),
	)

	if !payment.HasJournalEntry() {
		log.Info("payment has no journal entry")
		return outcome.Finish(finance.OutcomeNoJournalEntry, "payment has no journal entry")
	}

	// Step 1: sales order reference
	reference, source, err := s.locateReference(ctx, payment, log)
	if err != nil {
		log.Error("failed to locate sales order reference", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}
	if reference == "" {
		log.Info("no sales order reference found for payment; include the order number in the memo or pay the exact invoice amount")
		return outcome.Finish(finance.OutcomeNoReference, "")
	}
	outcome.Reference = reference
	outcome.ReferenceSource = source
	log = log.With(zap.String("so_reference", reference))

	// Step 2: sales order
	order, err := s.matcher.resolve(ctx, reference, true)
	if errors.Is(err, shared.ErrNotFound) {
		log.Warn("sales order not found")
		return outcome.Finish(finance.OutcomeSalesOrderNotFound, "")
	}
	if err != nil {
		log.Error("failed to resolve sales order", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}
	outcome.SalesOrder = order.Name
	log = log.With(zap.String("sales_order", order.Name))

	// Step 3: unpaid invoices of the order
	invoices, all, err := s.matcher.openInvoices(ctx, order)
	if err != nil {
		log.Error("failed to load invoices", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}
	if len(invoices) == 0 {
		log.Info("no unpaid invoices for sales order",
			zap.Strings("invoices", finance.InvoiceNames(all)),
			zap.Strings("payment_states", paymentStates(all)),
		)
		return outcome.Finish(finance.OutcomeNoUnpaidInvoices, "")
	}
	outcome.Invoices = finance.InvoiceNames(invoices)

	// Step 4: eligible ledger lines
	paymentMoveLines, err := s.lines.FindByMove(ctx, *payment.MoveID)
	if err != nil {
		log.Error("failed to load payment lines", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}
	paymentLines := paymentMoveLines.OpenReceivable().Credits()
	if len(paymentLines) == 0 {
		log.Warn("no unreconciled payment lines found", zap.Int("payment_line_count", len(paymentMoveLines)))
		return outcome.Finish(finance.OutcomeNoEligibleLines, "no unreconciled receivable credit on the payment")
	}

	invoiceMoveLines, err := s.lines.FindByMoves(ctx, finance.InvoiceIDs(invoices))
	if err != nil {
		log.Error("failed to load invoice lines", zap.Error(err))
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}
	invoiceLines := invoiceMoveLines.OpenReceivable().Debits()
	if len(invoiceLines) == 0 {
		log.Info("all invoice lines already reconciled")
		return outcome.Finish(finance.OutcomeNoEligibleLines, "no unreconciled receivable debit on the invoices")
	}

	// Step 5: reconcile
	return s.attemptReconcile(ctx, outcome, paymentLines, invoiceLines, log)
}

// locateReference finds a sales order reference in the payment memo, or
// through the invoice the payment most likely settles.
func (s *PaymentReconciliationService) locateReference(
	ctx context.Context,
	payment *finance.Payment,
	log *logger.ContextLogger,
) (string, finance.ReferenceSource, error) {
	if reference, ok := finance.ExtractSalesOrderReference(payment.Memo); ok {
		log.Info("found sales order in payment memo", zap.String("so_reference", reference))
		return reference, finance.ReferenceSourcePaymentMemo, nil
	}

	log.Info("no sales order in payment memo, searching invoice")
	invoice, err := s.findInvoice(ctx, payment, log)
	if err != nil || invoice == nil {
		return "", "", err
	}

	if reference, source, ok := invoice.SalesOrderReference(); ok {
		log.Info("found sales order on invoice",
			zap.String("invoice", invoice.Name),
			zap.String("source", string(source)),
			zap.String("so_reference", reference),
		)
		return reference, source, nil
	}

	orders, err := s.orders.FindByInvoice(ctx, invoice.ID)
	if err != nil {
		return "", "", err
	}
	if len(orders) > 0 {
		log.Info("found sales order from invoice lines",
			zap.String("invoice", invoice.Name),
			zap.String("so_reference", orders[0].Name),
		)
		return orders[0].Name, finance.ReferenceSourceInvoiceLines, nil
	}
	return "", "", nil
}

// findInvoice looks up the invoice named by the memo, then falls back to the
// partner's newest unpaid invoice whose residual equals the payment amount.
// Returns nil without error when nothing matches.
func (s *PaymentReconciliationService) findInvoice(
	ctx context.Context,
	payment *finance.Payment,
	log *logger.ContextLogger,
) (*finance.Invoice, error) {
	if s.config.LooksLikeInvoiceNumber(payment.Memo) {
		invoice, err := s.invoices.FindPostedByName(ctx, payment.Memo)
		switch {
		case err == nil:
			log.Info("found invoice by memo", zap.String("invoice", invoice.Name))
			return invoice, nil
		case errors.Is(err, shared.ErrNotFound):
			log.Debug("memo looks like an invoice number but no posted invoice has it")
		default:
			return nil, err
		}
	}

	candidates, err := s.invoices.FindUnpaidByPartner(ctx, payment.PartnerID, s.config.CandidateInvoiceLimit)
	if err != nil {
		return nil, err
	}
	log.Info("searching candidate invoices by partner and amount",
		zap.String("partner_id", payment.PartnerID.String()),
		zap.Int("candidate_count", len(candidates)),
		zap.String("tolerance", s.config.AmountTolerance.String()),
	)
	for _, inv := range candidates {
		log.Debug("candidate invoice",
			zap.String("invoice", inv.Name),
			zap.String("amount_total", inv.AmountTotal.String()),
			zap.String("amount_residual", inv.AmountResidual.String()),
		)
	}

	invoice, ok := s.config.SelectInvoiceByAmount(candidates, payment.Amount)
	if !ok {
		log.Info("no matching invoice found")
		return nil, nil
	}
	log.Info("matched invoice by amount", zap.String("invoice", invoice.Name))
	return invoice, nil
}

// attemptReconcile asks the ledger for a full reconciliation of the union of
// both sides and, if the ledger refuses, for one partial reconciliation
// between the first invoice line and the first payment line. Nothing is retried.
func (s *PaymentReconciliationService) attemptReconcile(
	ctx context.Context,
	outcome *finance.ReconciliationOutcome,
	paymentLines, invoiceLines finance.MoveLines,
	log *logger.ContextLogger,
) *finance.ReconciliationOutcome {
	lines := paymentLines.Union(invoiceLines)
	outcome.LineIDs = lines.IDs()

	paymentTotal := paymentLines.TotalCredit()
	invoiceTotal := invoiceLines.TotalDebit()
	log.Info("performing reconciliation",
		zap.Int("payment_line_count", len(paymentLines)),
		zap.String("payment_total", paymentTotal.String()),
		zap.Int("invoice_line_count", len(invoiceLines)),
		zap.String("invoice_total", invoiceTotal.String()),
	)

	_, err := s.reconciler.Reconcile(ctx, lines)
	if err == nil {
		log.Info("payment reconciled with sales order", zap.Strings("invoices", outcome.Invoices))
		return outcome.Finish(finance.OutcomeReconciled, "")
	}
	log.Error("reconciliation failed", zap.Error(err))

	if !s.config.PartialFallbackEnabled {
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}

	amount := finance.PartialAmount(paymentLines, invoiceLines)
	if !amount.IsPositive() {
		return outcome.Finish(finance.OutcomeFailed, err.Error())
	}

	telemetry.AddEvent(trace.SpanFromContext(ctx), "partial_fallback",
		telemetry.SpanAttrAmount, amount.String(),
		"cause", err.Error(),
	)
	partial, perr := s.reconciler.CreatePartialReconciliation(ctx, invoiceLines[0].ID, paymentLines[0].ID, amount)
	if perr != nil {
		log.Error("partial reconciliation failed", zap.Error(perr))
		return outcome.Finish(finance.OutcomeFailed, perr.Error())
	}

	settled := partial.Amount
	log.Info("partial reconciliation created",
		zap.String("amount", settled.String()),
		zap.String("requested", amount.String()),
	)
	outcome.PartialAmount = &settled
	return outcome.Finish(finance.OutcomePartiallyReconciled, err.Error())
}
