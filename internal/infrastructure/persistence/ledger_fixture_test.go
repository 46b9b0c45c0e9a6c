package persistence

import (
	"testing"
	"time"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/trade"
	"github.com/erp/soreconcile/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupLedgerDB opens an in-memory SQLite ledger. A single connection keeps
// every query on the same in-memory database.
func setupLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.LedgerModels()...))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ledgerSeed writes fixture rows with sensible defaults
type ledgerSeed struct {
	t  *testing.T
	db *gorm.DB
}

func newLedgerSeed(t *testing.T, db *gorm.DB) *ledgerSeed {
	return &ledgerSeed{t: t, db: db}
}

func (s *ledgerSeed) order(name string, partnerID uuid.UUID) models.SalesOrderModel {
	s.t.Helper()
	m := models.SalesOrderModel{
		BaseModel: models.NewBaseModel(),
		Name:      name,
		PartnerID: partnerID,
		State:     trade.OrderStateSale,
	}
	require.NoError(s.t, s.db.Create(&m).Error)
	return m
}

func (s *ledgerSeed) invoice(name string, partnerID uuid.UUID, amount string, date time.Time, mutate ...func(*models.AccountMoveModel)) models.AccountMoveModel {
	s.t.Helper()
	m := models.AccountMoveModel{
		BaseModel:      models.NewBaseModel(),
		Name:           name,
		MoveType:       finance.MoveTypeOutInvoice,
		State:          finance.InvoiceStatePosted,
		PaymentState:   finance.PaymentStateNotPaid,
		PartnerID:      partnerID,
		Date:           date,
		AmountTotal:    dec(amount),
		AmountResidual: dec(amount),
	}
	for _, fn := range mutate {
		fn(&m)
	}
	require.NoError(s.t, s.db.Create(&m).Error)
	return m
}

func (s *ledgerSeed) entry(name string, moveType finance.MoveType) models.AccountMoveModel {
	s.t.Helper()
	m := models.AccountMoveModel{
		BaseModel:    models.NewBaseModel(),
		Name:         name,
		MoveType:     moveType,
		State:        finance.InvoiceStatePosted,
		PaymentState: finance.PaymentStateNotPaid,
		Date:         time.Now(),
	}
	require.NoError(s.t, s.db.Create(&m).Error)
	return m
}

func (s *ledgerSeed) link(orderID, invoiceID uuid.UUID) {
	s.t.Helper()
	require.NoError(s.t, s.db.Create(&models.SalesOrderInvoiceModel{SalesOrderID: orderID, InvoiceID: invoiceID}).Error)
}

func (s *ledgerSeed) line(moveID uuid.UUID, seq int, accountType finance.AccountType, debit, credit string) models.MoveLineModel {
	s.t.Helper()
	residual := decimal.Zero
	if accountType.IsReceivable() {
		residual = dec(debit).Add(dec(credit))
	}
	m := models.MoveLineModel{
		BaseModel:      models.NewBaseModel(),
		MoveID:         moveID,
		Sequence:       seq,
		AccountType:    accountType,
		Debit:          dec(debit),
		Credit:         dec(credit),
		AmountResidual: residual,
	}
	require.NoError(s.t, s.db.Create(&m).Error)
	return m
}

func (s *ledgerSeed) reloadLine(id uuid.UUID) models.MoveLineModel {
	s.t.Helper()
	var m models.MoveLineModel
	require.NoError(s.t, s.db.First(&m, "id = ?", id).Error)
	return m
}

func (s *ledgerSeed) reloadMove(id uuid.UUID) models.AccountMoveModel {
	s.t.Helper()
	var m models.AccountMoveModel
	require.NoError(s.t, s.db.First(&m, "id = ?", id).Error)
	return m
}
