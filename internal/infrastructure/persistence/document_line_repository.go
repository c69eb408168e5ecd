package persistence

import (
	"context"
	"errors"

	"github.com/erp/accounting/internal/domain/accounting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentLineRepository implements DocumentLineRepository using GORM
type GormDocumentLineRepository struct {
	db *gorm.DB
}

// NewGormDocumentLineRepository creates a new GormDocumentLineRepository
func NewGormDocumentLineRepository(db *gorm.DB) *GormDocumentLineRepository {
	return &GormDocumentLineRepository{db: db}
}

// FindByID finds a document line by its ID
func (r *GormDocumentLineRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.DocumentLine, error) {
	var model models.DocumentLineModel
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

// FindByDocumentID finds all lines of a document ordered by line number
func (r *GormDocumentLineRepository) FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]accounting.DocumentLine, error) {
	var lineModels []models.DocumentLineModel
	if err := r.db.WithContext(ctx).
		Where("document_id = ? AND deleted = ?", documentID, false).
		Order("line_number ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}

	lines := make([]accounting.DocumentLine, len(lineModels))
	for i, model := range lineModels {
		lines[i] = *model.ToDomain()
	}
	return lines, nil
}

// Create inserts a new document line
func (r *GormDocumentLineRepository) Create(ctx context.Context, line *accounting.DocumentLine) error {
	model := models.DocumentLineModelFromDomain(line)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update saves a document line with a conditional write keyed on the expected
// row version
func (r *GormDocumentLineRepository) Update(ctx context.Context, line *accounting.DocumentLine, expected shared.RowVersion) error {
	result := r.db.WithContext(ctx).
		Model(&models.DocumentLineModel{}).
		Where("id = ? AND row_version = ? AND deleted = ?", line.ID, []byte(expected), false).
		Updates(map[string]any{
			"description": line.Description,
			"quantity":    line.Quantity,
			"unit_price":  line.UnitPrice,
			"vat_rate":    line.VATRate,
			"amount":      line.Amount,
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

// Delete marks a document line deleted with a conditional write keyed on the
// expected row version
func (r *GormDocumentLineRepository) Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	token := shared.NewRowVersion()
	result := r.db.WithContext(ctx).
		Model(&models.DocumentLineModel{}).
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

func (r *GormDocumentLineRepository) staleWriteError(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	var current models.DocumentLineModel
	if err := r.db.WithContext(ctx).First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if current.Deleted {
		return shared.ErrNotFound
	}
	return shared.NewConflictError("document line", id, expected, shared.RowVersion(current.RowVersion))
}

// Ensure GormDocumentLineRepository implements DocumentLineRepository
var _ accounting.DocumentLineRepository = (*GormDocumentLineRepository)(nil)
