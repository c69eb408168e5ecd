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

// GormCostHeaderRepository implements CostHeaderRepository using GORM
type GormCostHeaderRepository struct {
	db *gorm.DB
}

// NewGormCostHeaderRepository creates a new GormCostHeaderRepository
func NewGormCostHeaderRepository(db *gorm.DB) *GormCostHeaderRepository {
	return &GormCostHeaderRepository{db: db}
}

// FindByID finds a cost header by its ID together with its lines. Lines are
// loaded in creation order; distribution walks them in this order and the
// last one absorbs the rounding remainder.
func (r *GormCostHeaderRepository) FindByID(ctx context.Context, id uuid.UUID) (*costing.CostHeader, error) {
	var model models.CostHeaderModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var lineModels []models.CostLineModel
	if err := r.db.WithContext(ctx).
		Where("cost_header_id = ? AND deleted = ?", id, false).
		Order("created_at ASC, id ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}

	header := model.ToDomain()
	header.Lines = make([]costing.CostLine, len(lineModels))
	for i, lm := range lineModels {
		header.Lines[i] = *lm.ToDomain()
	}
	return header, nil
}

// FindAll finds all cost headers matching the filter and returns the total count
func (r *GormCostHeaderRepository) FindAll(ctx context.Context, filter costing.CostHeaderFilter) ([]costing.CostHeader, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.CostHeaderModel{}).
		Where("deleted = ?", false)

	if filter.DocumentID != uuid.Nil {
		query = query.Where("document_id = ?", filter.DocumentID)
	}
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var headerModels []models.CostHeaderModel
	if err := query.Order("due_date ASC, created_at ASC").Find(&headerModels).Error; err != nil {
		return nil, 0, err
	}

	headers := make([]costing.CostHeader, len(headerModels))
	for i, model := range headerModels {
		headers[i] = *model.ToDomain()
	}
	return headers, total, nil
}

// Create inserts a new cost header
func (r *GormCostHeaderRepository) Create(ctx context.Context, header *costing.CostHeader) error {
	model := models.CostHeaderModelFromDomain(header)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update saves a cost header with a conditional write keyed on the expected
// row version
func (r *GormCostHeaderRepository) Update(ctx context.Context, header *costing.CostHeader, expected shared.RowVersion) error {
	result := r.db.WithContext(ctx).
		Model(&models.CostHeaderModel{}).
		Where("id = ? AND row_version = ? AND deleted = ?", header.ID, []byte(expected), false).
		Updates(map[string]any{
			"description": header.Description,
			"due_date":    header.DueDate,
			"currency":    header.Currency,
			"amount":      header.Amount,
			"row_version": []byte(header.RowVersion),
			"updated_at":  header.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.staleWriteError(ctx, header.ID, expected)
	}
	return nil
}

// Delete marks a cost header deleted with a conditional write keyed on the
// expected row version
func (r *GormCostHeaderRepository) Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	token := shared.NewRowVersion()
	result := r.db.WithContext(ctx).
		Model(&models.CostHeaderModel{}).
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

// SaveDistribution persists the amounts, methods and fresh tokens of all
// given lines in a single transaction. The writes are keyed on the line IDs
// alone, not their row versions: a distribution run replaces whatever amounts
// the lines carried, including edits made after the run loaded them.
func (r *GormCostHeaderRepository) SaveDistribution(ctx context.Context, headerID uuid.UUID, lines []*costing.CostLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			result := tx.Model(&models.CostLineModel{}).
				Where("id = ? AND cost_header_id = ? AND deleted = ?", line.ID, headerID, false).
				Updates(map[string]any{
					"amount":      line.Amount,
					"method":      line.Method,
					"row_version": []byte(line.RowVersion),
					"updated_at":  line.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrNotFound
			}
		}
		return nil
	})
}

func (r *GormCostHeaderRepository) staleWriteError(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	var current models.CostHeaderModel
	if err := r.db.WithContext(ctx).First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if current.Deleted {
		return shared.ErrNotFound
	}
	return shared.NewConflictError("cost header", id, expected, shared.RowVersion(current.RowVersion))
}

// Ensure GormCostHeaderRepository implements CostHeaderRepository
var _ costing.CostHeaderRepository = (*GormCostHeaderRepository)(nil)
