package persistence

import (
	"context"
	"errors"

	"github.com/erp/accounting/internal/domain/costing"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCostLineRepository implements CostLineRepository using GORM
type GormCostLineRepository struct {
	db *gorm.DB
}

// NewGormCostLineRepository creates a new GormCostLineRepository
func NewGormCostLineRepository(db *gorm.DB) *GormCostLineRepository {
	return &GormCostLineRepository{db: db}
}

// FindByID finds a cost line by its ID
func (r *GormCostLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostLine, error) {
	var model models.CostLineModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByHeaderID finds all lines of a cost header in creation order
func (r *GormCostLineRepository) FindByHeaderID(ctx context.Context, headerID uuid.UUID) ([]costing.CostLine, error) {
	var lineModels []models.CostLineModel
	if err := r.db.WithContext(ctx).
		Where("cost_header_id = ? AND deleted = ?", headerID, false).
		Order("created_at ASC, id ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}

	lines := make([]costing.CostLine, len(lineModels))
	for i, model := range lineModels {
		lines[i] = *model.ToDomain()
	}
	return lines, nil
}

// Create inserts a new cost line
func (r *GormCostLineRepository) Create(ctx context.Context, line *costing.CostLine) error {
	model := models.CostLineModelFromDomain(line)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update saves a cost line with a conditional write keyed on the expected row
// version
func (r *GormCostLineRepository) Update(ctx context.Context, line *costing.CostLine, expected shared.RowVersion) error {
	result := r.db.WithContext(ctx).
		Model(&models.CostLineModel{}).
		Where("id = ? AND row_version = ? AND deleted = ?", line.ID, []byte(expected), false).
		Updates(map[string]any{
			"description": line.Description,
			"quantity":    line.Quantity,
			"vat_rate":    line.VATRate,
			"amount":      line.Amount,
			"method":      line.Method,
			"row_version": []byte(line.RowVersion),
			"updated_at":  line.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.staleWriteError(ctx, line.ID, expected)
	}
	return nil
}

// Delete marks a cost line deleted with a conditional write keyed on the
// expected row version
func (r *GormCostLineRepository) Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	token := shared.NewRowVersion()
	result := r.db.WithContext(ctx).
		Model(&models.CostLineModel{}).
		Where("id = ? AND row_version = ? AND deleted = ?", id, []byte(expected), false).
		Updates(map[string]any{
			"deleted":     true,
			"row_version": []byte(token),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.staleWriteError(ctx, id, expected)
	}
	return nil
}

func (r *GormCostLineRepository) staleWriteError(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	var current models.CostLineModel
	if err := r.db.WithContext(ctx).First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if current.Deleted {
		return shared.ErrNotFound
	}
	return shared.NewConflictError("cost line", id, expected, shared.RowVersion(current.RowVersion))
}

// Ensure GormCostLineRepository implements CostLineRepository
var _ costing.CostLineRepository = (*GormCostLineRepository)(nil)
