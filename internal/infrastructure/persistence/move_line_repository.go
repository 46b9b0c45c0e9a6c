package persistence

import (
	"context"
	"sort"

	"github.com/erp/soreconcile/internal/domain/finance"
	"github.com/erp/soreconcile/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMoveLineRepository implements finance.MoveLineRepository using GORM
type GormMoveLineRepository struct {
	db *gorm.DB
}

// NewGormMoveLineRepository creates a new GormMoveLineRepository
func NewGormMoveLineRepository(db *gorm.DB) *GormMoveLineRepository {
	return &GormMoveLineRepository{db: db}
}

// FindByMove finds the lines of one journal entry in sequence order
func (r *GormMoveLineRepository) FindByMove(ctx context.Context, moveID uuid.UUID) (finance.MoveLines, error) {
	var rows []models.MoveLineModel
	err := r.db.WithContext(ctx).
		Where("move_id = ?", moveID).
		Order("sequence").
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return models.MoveLinesToDomain(rows), nil
}

// FindByMoves finds the lines of several journal entries. Lines are grouped
// by entry in the order of moveIDs, then in sequence order.
func (r *GormMoveLineRepository) FindByMoves(ctx context.Context, moveIDs []uuid.UUID) (finance.MoveLines, error) {
	if len(moveIDs) == 0 {
		return finance.MoveLines{}, nil
	}

	var rows []models.MoveLineModel
	err := r.db.WithContext(ctx).
		Where("move_id IN ?", moveIDs).
		Order("sequence").
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	position := make(map[uuid.UUID]int, len(moveIDs))
	for i, id := range moveIDs {
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return position[rows[i].MoveID] < position[rows[j].MoveID]
	})
	return models.MoveLinesToDomain(rows), nil
}

var _ finance.MoveLineRepository = (*GormMoveLineRepository)(nil)
