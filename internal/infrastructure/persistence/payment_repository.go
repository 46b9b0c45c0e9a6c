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

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormStatementLineRepository implements finance.BankStatementLineRepository using GORM
type GormStatementLineRepository struct {
	db *gorm.DB
}

// NewGormStatementLineRepository creates a new GormStatementLineRepository
func NewGormStatementLineRepository(db *gorm.DB) *GormStatementLineRepository {
	return &GormStatementLineRepository{db: db}
}

// FindByID finds a bank statement line by its ID
func (r *GormStatementLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BankStatementLine, error) {
	var model models.BankStatementLineModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var (
	_ finance.PaymentRepository           = (*GormPaymentRepository)(nil)
	_ finance.BankStatementLineRepository = (*GormStatementLineRepository)(nil)
)
