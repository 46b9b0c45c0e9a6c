package finance

import (
	"github.com/erp/soreconcile/internal/domain/finance"
	"go.uber.org/zap"
)

// MoveLineLabeler implements the "build default ledger-line values" hook
type MoveLineLabeler struct {
	logger *zap.Logger
}

// NewMoveLineLabeler creates a new MoveLineLabeler
func NewMoveLineLabeler(logger *zap.Logger) *MoveLineLabeler {
	return &MoveLineLabeler{logger: logger}
}

// PrepareMoveLineDefaults stamps the statement line's raw payment reference
// into the description of the first generated line, whenever the reference
// is non-empty. The input slice is not modified.
func (l *MoveLineLabeler) PrepareMoveLineDefaults(line *finance.BankStatementLine, vals []finance.MoveLineValues) []finance.MoveLineValues {
	result := make([]finance.MoveLineValues, len(vals))
	copy(result, vals)

	if line == nil || line.PaymentRef == "" || len(result) == 0 {
		return result
	}

	result[0].Name = line.PaymentRef
	if reference, ok := finance.ExtractSalesOrderReference(line.PaymentRef); ok {
		l.logger.Debug("stamped sales order reference on move line",
			zap.String("statement_line_id", line.ID.String()),
			zap.String("so_reference", reference),
		)
	}
	return result
}
