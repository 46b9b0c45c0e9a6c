package finance

import (
	"context"
	"time"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockSalesOrderRepository is a mock implementation of trade.SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByNameMatch(ctx context.Context, reference string) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByNameContaining(ctx context.Context, fragment string) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]trade.SalesOrder, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.SalesOrder), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of finance.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindPostedByName(ctx context.Context, name string) (*finance.Invoice, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindUnpaidByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]finance.Invoice, error) {
	args := m.Called(ctx, partnerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) ([]finance.Invoice, error) {
	args := m.Called(ctx, salesOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.Invoice), args.Error(1)
}

// MockMoveLineRepository is a mock implementation of finance.MoveLineRepository
type MockMoveLineRepository struct {
	mock.Mock
}

func (m *MockMoveLineRepository) FindByMove(ctx context.Context, moveID uuid.UUID) (finance.MoveLines, error) {
	args := m.Called(ctx, moveID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(finance.MoveLines), args.Error(1)
}

func (m *MockMoveLineRepository) FindByMoves(ctx context.Context, moveIDs []uuid.UUID) (finance.MoveLines, error) {
	args := m.Called(ctx, moveIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(finance.MoveLines), args.Error(1)
}

// MockReconciler is a mock implementation of finance.Reconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, lines finance.MoveLines) (*finance.Reconciliation, error) {
	args := m.Called(ctx, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Reconciliation), args.Error(1)
}

func (m *MockReconciler) CreatePartialReconciliation(ctx context.Context, debitLineID, creditLineID uuid.UUID, amount decimal.Decimal) (*finance.PartialReconciliation, error) {
	args := m.Called(ctx, debitLineID, creditLineID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.PartialReconciliation), args.Error(1)
}

// MockOutcomeRecorder is a mock implementation of OutcomeRecorder
type MockOutcomeRecorder struct {
	mock.Mock
}

func (m *MockOutcomeRecorder) RecordOutcome(ctx context.Context, path, status string, elapsed time.Duration) {
	m.Called(ctx, path, status, elapsed)
}

// Verify interface compliance
var (
	_ trade.SalesOrderRepository = (*MockSalesOrderRepository)(nil)
	_ finance.InvoiceRepository  = (*MockInvoiceRepository)(nil)
	_ finance.MoveLineRepository = (*MockMoveLineRepository)(nil)
	_ finance.Reconciler         = (*MockReconciler)(nil)
	_ OutcomeRecorder            = (*MockOutcomeRecorder)(nil)
)

// Test helper functions
func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type ledgerFixture struct {
	orders     *MockSalesOrderRepository
	invoices   *MockInvoiceRepository
	lines      *MockMoveLineRepository
	reconciler *MockReconciler
}

func newLedgerFixture() *ledgerFixture {
	return &ledgerFixture{
		orders:     new(MockSalesOrderRepository),
		invoices:   new(MockInvoiceRepository),
		lines:      new(MockMoveLineRepository),
		reconciler: new(MockReconciler),
	}
}

func (f *ledgerFixture) assertExpectations(t mock.TestingT) {
	f.orders.AssertExpectations(t)
	f.invoices.AssertExpectations(t)
	f.lines.AssertExpectations(t)
	f.reconciler.AssertExpectations(t)
}

func newTestPayment(memo, amount string) *finance.Payment {
	moveID := uuid.New()
	return &finance.Payment{
		ID:          uuid.New(),
		Name:        "PBNK1/2026/0001",
		Memo:        memo,
		Amount:      dec(amount),
		PartnerID:   uuid.New(),
		PartnerType: finance.PartnerTypeCustomer,
		Status:      finance.PaymentStatusPosted,
		MoveID:      &moveID,
	}
}

func newTestOrder(name string) trade.SalesOrder {
	return trade.SalesOrder{ID: uuid.New(), Name: name, PartnerID: uuid.New(), State: trade.OrderStateSale}
}

func newTestInvoice(name, residual string) finance.Invoice {
	return finance.Invoice{
		ID:             uuid.New(),
		Name:           name,
		MoveType:       finance.MoveTypeOutInvoice,
		State:          finance.InvoiceStatePosted,
		PaymentState:   finance.PaymentStateNotPaid,
		Date:           time.Now(),
		AmountTotal:    dec(residual),
		AmountResidual: dec(residual),
	}
}

func receivableCredit(moveID uuid.UUID, amount string) finance.MoveLine {
	return finance.MoveLine{
		ID:             uuid.New(),
		MoveID:         moveID,
		AccountType:    finance.AccountTypeReceivable,
		Credit:         dec(amount),
		Debit:          decimal.Zero,
		AmountResidual: dec(amount),
	}
}

func receivableDebit(moveID uuid.UUID, amount string) finance.MoveLine {
	return finance.MoveLine{
		ID:             uuid.New(),
		MoveID:         moveID,
		AccountType:    finance.AccountTypeReceivable,
		Debit:          dec(amount),
		Credit:         decimal.Zero,
		AmountResidual: dec(amount),
	}
}

func cashDebit(moveID uuid.UUID, amount string) finance.MoveLine {
	return finance.MoveLine{
		ID:          uuid.New(),
		MoveID:      moveID,
		AccountType: finance.AccountTypeCash,
		Debit:       dec(amount),
		Credit:      decimal.Zero,
	}
}
