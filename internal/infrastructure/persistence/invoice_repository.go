package persistence

import (
	"context"
	"errors"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements finance.InvoiceRepository over account_moves
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindPostedByName finds the posted customer invoice with exactly this name
func (r *GormInvoiceRepository) FindPostedByName(ctx context.Context, name string) (*finance.Invoice, error) {
	var model models.AccountMoveModel
	err := r.db.WithContext(ctx).
		Where("name = ? AND move_type = ? AND state = ?", name, finance.MoveTypeOutInvoice, finance.InvoiceStatePosted).
		Order("date DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	invoice := model.ToInvoice()
	return &invoice, nil
}

// FindUnpaidByPartner finds the partner's posted customer invoices that are
// not or partially paid, newest first
func (r *GormInvoiceRepository) FindUnpaidByPartner(ctx context.Context, partnerID uuid.UUID, limit int) ([]finance.Invoice, error) {
	query := r.db.WithContext(ctx).
		Where("partner_id = ? AND move_type = ? AND state = ? AND payment_state IN ?",
			partnerID, finance.MoveTypeOutInvoice, finance.InvoiceStatePosted, finance.OutstandingPaymentStates()).
		Order("date DESC").
		Order("name DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []models.AccountMoveModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// FindBySalesOrder finds every invoice linked to the sales order
func (r *GormInvoiceRepository) FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) ([]finance.Invoice, error) {
	var rows []models.AccountMoveModel
	err := r.db.WithContext(ctx).
		Joins("JOIN sales_order_invoices soi ON soi.invoice_id = account_moves.id").
		Where("soi.sales_order_id = ?", salesOrderID).
		Order("account_moves.date").
		Order("account_moves.name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

func invoicesToDomain(rows []models.AccountMoveModel) []finance.Invoice {
	invoices := make([]finance.Invoice, len(rows))
	for i := range rows {
		invoices[i] = rows[i].ToInvoice()
	}
	return invoices
}

var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
