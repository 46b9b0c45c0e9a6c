package models

import (
	"time"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for host sales orders
type SalesOrderModel struct {
	BaseModel
	Name      string           `gorm:"type:varchar(64);not null;index"`
	PartnerID uuid.UUID        `gorm:"type:uuid;not null;index"`
	State     trade.OrderState `gorm:"type:varchar(16);not null;default:'draft'"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder
func (m *SalesOrderModel) ToDomain() trade.SalesOrder {
	return trade.SalesOrder{
		ID:        m.ID,
		Name:      m.Name,
		PartnerID: m.PartnerID,
		State:     m.State,
	}
}

// SalesOrderInvoiceModel links a sales order to an invoice created from its lines
type SalesOrderInvoiceModel struct {
	SalesOrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (SalesOrderInvoiceModel) TableName() string {
	return "sales_order_invoices"
}

// AccountMoveModel is the persistence model for journal entries, invoices included
type AccountMoveModel struct {
	BaseModel
	Name           string               `gorm:"type:varchar(64);not null;index"`
	MoveType       finance.MoveType     `gorm:"type:varchar(16);not null;index"`
	State          finance.InvoiceState `gorm:"type:varchar(16);not null;default:'draft';index"`
	PaymentState   finance.PaymentState `gorm:"type:varchar(16);not null;default:'not_paid'"`
	PartnerID      uuid.UUID            `gorm:"type:uuid;index"`
	Date           time.Time            `gorm:"type:date;not null"`
	AmountTotal    decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	AmountResidual decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	InvoiceOrigin  string               `gorm:"type:varchar(255)"`
	SaleReference  string               `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (AccountMoveModel) TableName() string {
	return "account_moves"
}

// ToInvoice converts the persistence model to a domain Invoice
func (m *AccountMoveModel) ToInvoice() finance.Invoice {
	return finance.Invoice{
		ID:             m.ID,
		Name:           m.Name,
		MoveType:       m.MoveType,
		State:          m.State,
		PaymentState:   m.PaymentState,
		PartnerID:      m.PartnerID,
		Date:           m.Date,
		AmountTotal:    m.AmountTotal,
		AmountResidual: m.AmountResidual,
		InvoiceOrigin:  m.InvoiceOrigin,
		SaleReference:  m.SaleReference,
	}
}

// MoveLineModel is the persistence model for journal items
type MoveLineModel struct {
	BaseModel
	MoveID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	Sequence         int                 `gorm:"not null;default:10"`
	Name             string              `gorm:"type:varchar(255)"`
	AccountType      finance.AccountType `gorm:"type:varchar(32);not null"`
	Debit            decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Credit           decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	AmountResidual   decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Reconciled       bool                `gorm:"not null;default:false"`
	ReconciliationID *uuid.UUID          `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (MoveLineModel) TableName() string {
	return "account_move_lines"
}

// ToDomain converts the persistence model to a domain MoveLine
func (m *MoveLineModel) ToDomain() finance.MoveLine {
	return finance.MoveLine{
		ID:             m.ID,
		MoveID:         m.MoveID,
		Name:           m.Name,
		AccountType:    m.AccountType,
		Debit:          m.Debit,
		Credit:         m.Credit,
		AmountResidual: m.AmountResidual,
		Reconciled:     m.Reconciled,
	}
}

// MoveLinesToDomain converts a slice of persistence models
func MoveLinesToDomain(ms []MoveLineModel) finance.MoveLines {
	lines := make(finance.MoveLines, len(ms))
	for i := range ms {
		lines[i] = ms[i].ToDomain()
	}
	return lines
}

// PaymentModel is the persistence model for host payments
type PaymentModel struct {
	BaseModel
	Name        string                `gorm:"type:varchar(64);not null"`
	Memo        string                `gorm:"type:varchar(255)"`
	Amount      decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PartnerID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	PartnerType finance.PartnerType   `gorm:"type:varchar(16);not null"`
	Status      finance.PaymentStatus `gorm:"type:varchar(16);not null;default:'draft'"`
	MoveID      *uuid.UUID            `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "account_payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		ID:          m.ID,
		Name:        m.Name,
		Memo:        m.Memo,
		Amount:      m.Amount,
		PartnerID:   m.PartnerID,
		PartnerType: m.PartnerType,
		Status:      m.Status,
		MoveID:      m.MoveID,
	}
}

// BankStatementLineModel is the persistence model for imported bank transactions
type BankStatementLineModel struct {
	BaseModel
	PaymentRef   string          `gorm:"type:varchar(255)"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PartnerID    *uuid.UUID      `gorm:"type:uuid"`
	MoveID       *uuid.UUID      `gorm:"type:uuid"`
	IsReconciled bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (BankStatementLineModel) TableName() string {
	return "bank_statement_lines"
}

// ToDomain converts the persistence model to a domain BankStatementLine
func (m *BankStatementLineModel) ToDomain() *finance.BankStatementLine {
	return &finance.BankStatementLine{
		ID:           m.ID,
		PaymentRef:   m.PaymentRef,
		Amount:       m.Amount,
		PartnerID:    m.PartnerID,
		MoveID:       m.MoveID,
		IsReconciled: m.IsReconciled,
	}
}

// ReconciliationModel is a full reconciliation group
type ReconciliationModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReconciliationModel) TableName() string {
	return "full_reconciliations"
}

// PartialReconciliationModel settles an amount between one debit and one credit line
type PartialReconciliationModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	DebitLineID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreditLineID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReconciliationID *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartialReconciliationModel) TableName() string {
	return "partial_reconciliations"
}

// ToDomain converts the persistence model to a domain PartialReconciliation
func (m *PartialReconciliationModel) ToDomain() *finance.PartialReconciliation {
	return &finance.PartialReconciliation{
		ID:               m.ID,
		DebitLineID:      m.DebitLineID,
		CreditLineID:     m.CreditLineID,
		Amount:           m.Amount,
		ReconciliationID: m.ReconciliationID,
	}
}

// LedgerModels lists every model, in dependency order, for AutoMigrate in tests
func LedgerModels() []any {
	return []any{
		&SalesOrderModel{},
		&AccountMoveModel{},
		&SalesOrderInvoiceModel{},
		&MoveLineModel{},
		&PaymentModel{},
		&BankStatementLineModel{},
		&ReconciliationModel{},
		&PartialReconciliationModel{},
	}
}
