package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/domain/trade"
	"github.com/erp/soreconcile/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxNameMatches bounds name searches; callers only use the first match
const maxNameMatches = 10

// GormSalesOrderRepository implements trade.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order by its ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	order := model.ToDomain()
	return &order, nil
}

// FindByNameMatch finds orders whose name equals the reference or contains
// it case-insensitively, exact matches first
func (r *GormSalesOrderRepository) FindByNameMatch(ctx context.Context, reference string) ([]trade.SalesOrder, error) {
	var rows []models.SalesOrderModel
	err := r.db.WithContext(ctx).
		Where("name = ? OR LOWER(name) LIKE ? ESCAPE '\\'", reference, containsPattern(reference)).
		Order(clause.Expr{SQL: "CASE WHEN name = ? THEN 0 ELSE 1 END", Vars: []any{reference}}).
		Order("name").
		Limit(maxNameMatches).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return salesOrdersToDomain(rows), nil
}

// FindByNameContaining finds orders whose name contains the fragment case-insensitively
func (r *GormSalesOrderRepository) FindByNameContaining(ctx context.Context, fragment string) ([]trade.SalesOrder, error) {
	var rows []models.SalesOrderModel
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '\\'", containsPattern(fragment)).
		Order("name").
		Limit(maxNameMatches).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return salesOrdersToDomain(rows), nil
}

// FindByInvoice finds the orders an invoice was created from
func (r *GormSalesOrderRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]trade.SalesOrder, error) {
	var rows []models.SalesOrderModel
	err := r.db.WithContext(ctx).
		Joins("JOIN sales_order_invoices soi ON soi.sales_order_id = sales_orders.id").
		Where("soi.invoice_id = ?", invoiceID).
		Order("sales_orders.name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return salesOrdersToDomain(rows), nil
}

func salesOrdersToDomain(rows []models.SalesOrderModel) []trade.SalesOrder {
	orders := make([]trade.SalesOrder, len(rows))
	for i := range rows {
		orders[i] = rows[i].ToDomain()
	}
	return orders
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s anywhere
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
