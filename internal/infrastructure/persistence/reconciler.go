package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReconciler implements finance.Reconciler on the ledger tables.
// Each call runs in its own transaction and locks the lines it touches.
type GormReconciler struct {
	db *Database
}

// NewGormReconciler creates a new GormReconciler
func NewGormReconciler(db *Database) *GormReconciler {
	return &GormReconciler{db: db}
}

// Reconcile fully reconciles the lines. The set must hold at least one debit
// and one credit, every line must be an open receivable line, and the open
// debit residuals must equal the open credit residuals. The residuals are
// paired off into partial records under one full reconciliation.
func (r *GormReconciler) Reconcile(ctx context.Context, lines finance.MoveLines) (*finance.Reconciliation, error) {
	ids := lines.IDs()
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: at least two lines are required, got %d", finance.ErrReconciliationRejected, len(ids))
	}

	var result *finance.Reconciliation
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		rows, err := lockLines(tx, ids)
		if err != nil {
			return err
		}

		var debits, credits []*models.MoveLineModel
		debitTotal, creditTotal := decimal.Zero, decimal.Zero
		for i := range rows {
			row := &rows[i]
			if err := checkReconcilable(row); err != nil {
				return err
			}
			if row.Debit.IsPositive() {
				debits = append(debits, row)
				debitTotal = debitTotal.Add(row.AmountResidual)
			} else {
				credits = append(credits, row)
				creditTotal = creditTotal.Add(row.AmountResidual)
			}
		}
		if len(debits) == 0 || len(credits) == 0 {
			return fmt.Errorf("%w: both debit and credit lines are required", finance.ErrReconciliationRejected)
		}
		if !debitTotal.Equal(creditTotal) {
			return fmt.Errorf("%w: open debit %s does not balance open credit %s",
				finance.ErrReconciliationRejected, debitTotal.StringFixed(2), creditTotal.StringFixed(2))
		}

		now := time.Now()
		full := models.ReconciliationModel{ID: uuid.New(), CreatedAt: now}
		if err := tx.Create(&full).Error; err != nil {
			return err
		}

		if err := createPairingPartials(tx, debits, credits, full.ID, now); err != nil {
			return err
		}

		err = tx.Model(&models.MoveLineModel{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"amount_residual":   decimal.Zero,
				"reconciled":        true,
				"reconciliation_id": full.ID,
				"updated_at":        now,
			}).Error
		if err != nil {
			return err
		}

		if err := refreshMoves(tx, moveIDsOf(rows), now); err != nil {
			return err
		}

		result = &finance.Reconciliation{ID: full.ID, LineIDs: ids}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreatePartialReconciliation settles up to amount between an open receivable
// debit line and an open receivable credit line. The settled amount is capped
// by both open residuals and returned on the record. Both residuals are
// reduced, and a line whose residual reaches zero is marked reconciled.
func (r *GormReconciler) CreatePartialReconciliation(ctx context.Context, debitLineID, creditLineID uuid.UUID, amount decimal.Decimal) (*finance.PartialReconciliation, error) {
	if !amount.IsPositive() {
		return nil, finance.ErrInvalidPartialAmount
	}

	var result *finance.PartialReconciliation
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		rows, err := lockLines(tx, []uuid.UUID{debitLineID, creditLineID})
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*models.MoveLineModel, len(rows))
		for i := range rows {
			byID[rows[i].ID] = &rows[i]
		}
		debit, credit := byID[debitLineID], byID[creditLineID]

		for _, row := range []*models.MoveLineModel{debit, credit} {
			if err := checkReconcilable(row); err != nil {
				return err
			}
		}
		if !debit.Debit.IsPositive() || !credit.Credit.IsPositive() {
			return fmt.Errorf("%w: partial reconciliation needs a debit line and a credit line", finance.ErrReconciliationRejected)
		}
		settled := decimal.Min(amount, debit.AmountResidual, credit.AmountResidual)

		now := time.Now()
		partial := models.PartialReconciliationModel{
			ID:           uuid.New(),
			DebitLineID:  debit.ID,
			CreditLineID: credit.ID,
			Amount:       settled,
			CreatedAt:    now,
		}
		if err := tx.Create(&partial).Error; err != nil {
			return err
		}

		for _, row := range []*models.MoveLineModel{debit, credit} {
			if err := reduceResidual(tx, row, settled, now); err != nil {
				return err
			}
		}

		if err := refreshMoves(tx, moveIDsOf(rows), now); err != nil {
			return err
		}

		result = partial.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockLines loads the lines, locking them FOR UPDATE where the database
// supports it. Returns shared.ErrNotFound if any line is missing.
func lockLines(tx *gorm.DB, ids []uuid.UUID) ([]models.MoveLineModel, error) {
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []models.MoveLineModel
	if err := query.Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) != len(uniqueIDs(ids)) {
		return nil, fmt.Errorf("%w: %d of %d move lines found", shared.ErrNotFound, len(rows), len(ids))
	}
	return rows, nil
}

func checkReconcilable(row *models.MoveLineModel) error {
	if row.Reconciled || !row.AccountType.IsReceivable() || !row.AmountResidual.IsPositive() {
		return fmt.Errorf("%w: line %s", finance.ErrLineNotReconcilable, row.ID)
	}
	return nil
}

// createPairingPartials walks debits and credits in order and records how
// much of each debit residual every credit settles
func createPairingPartials(tx *gorm.DB, debits, credits []*models.MoveLineModel, fullID uuid.UUID, now time.Time) error {
	debitLeft := make([]decimal.Decimal, len(debits))
	for i, d := range debits {
		debitLeft[i] = d.AmountResidual
	}
	creditLeft := make([]decimal.Decimal, len(credits))
	for i, c := range credits {
		creditLeft[i] = c.AmountResidual
	}

	var partials []models.PartialReconciliationModel
	di, ci := 0, 0
	for di < len(debits) && ci < len(credits) {
		amount := decimal.Min(debitLeft[di], creditLeft[ci])
		reconciliationID := fullID
		partials = append(partials, models.PartialReconciliationModel{
			ID:               uuid.New(),
			DebitLineID:      debits[di].ID,
			CreditLineID:     credits[ci].ID,
			Amount:           amount,
			ReconciliationID: &reconciliationID,
			CreatedAt:        now,
		})
		debitLeft[di] = debitLeft[di].Sub(amount)
		creditLeft[ci] = creditLeft[ci].Sub(amount)
		if debitLeft[di].IsZero() {
			di++
		}
		if creditLeft[ci].IsZero() {
			ci++
		}
	}
	return tx.Create(&partials).Error
}

func reduceResidual(tx *gorm.DB, row *models.MoveLineModel, amount decimal.Decimal, now time.Time) error {
	residual := row.AmountResidual.Sub(amount)
	return tx.Model(&models.MoveLineModel{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"amount_residual": residual,
			"reconciled":      residual.IsZero(),
			"updated_at":      now,
		}).Error
}

// refreshMoves recomputes the residual and payment state of the customer
// invoices among the given journal entries from their receivable lines
func refreshMoves(tx *gorm.DB, moveIDs []uuid.UUID, now time.Time) error {
	var invoices []models.AccountMoveModel
	err := tx.Where("id IN ? AND move_type IN ?", moveIDs,
		[]finance.MoveType{finance.MoveTypeOutInvoice, finance.MoveTypeOutRefund}).
		Find(&invoices).Error
	if err != nil {
		return err
	}

	for _, inv := range invoices {
		var lines []models.MoveLineModel
		if err := tx.Where("move_id = ?", inv.ID).Find(&lines).Error; err != nil {
			return err
		}
		residual := decimal.Zero
		for _, l := range lines {
			if l.AccountType.IsReceivable() {
				residual = residual.Add(l.AmountResidual)
			}
		}

		err := tx.Model(&models.AccountMoveModel{}).
			Where("id = ?", inv.ID).
			Updates(map[string]interface{}{
				"amount_residual": residual,
				"payment_state":   paymentStateFor(residual, inv.AmountTotal),
				"updated_at":      now,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func paymentStateFor(residual, total decimal.Decimal) finance.PaymentState {
	switch {
	case !residual.IsPositive():
		return finance.PaymentStatePaid
	case residual.LessThan(total):
		return finance.PaymentStatePartial
	default:
		return finance.PaymentStateNotPaid
	}
}

func moveIDsOf(rows []models.MoveLineModel) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(rows))
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if !seen[r.MoveID] {
			seen[r.MoveID] = true
			ids = append(ids, r.MoveID)
		}
	}
	return ids
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

var _ finance.Reconciler = (*GormReconciler)(nil)
