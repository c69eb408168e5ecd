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

// GormDocumentRepository implements DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Document, error) {
	var model models.DocumentModel
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

// FindAll finds all documents matching the filter and returns the total count
func (r *GormDocumentRepository) FindAll(ctx context.Context, filter accounting.DocumentFilter) ([]accounting.Document, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("deleted = ?", false)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR partner_name ILIKE ?", pattern, pattern)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var documentModels []models.DocumentModel
	if err := query.Order("issue_date DESC, number DESC").Find(&documentModels).Error; err != nil {
		return nil, 0, err
	}

	documents := make([]accounting.Document, len(documentModels))
	for i, model := range documentModels {
		documents[i] = *model.ToDomain()
	}
	return documents, total, nil
}

// Create inserts a new document
func (r *GormDocumentRepository) Create(ctx context.Context, doc *accounting.Document) error {
	model := models.DocumentModelFromDomain(doc)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update saves a document with a conditional write keyed on the expected row
// version. Zero affected rows means the token went stale between the read and
// the write; the row is reloaded to tell a missing record from a conflict.
func (r *GormDocumentRepository) Update(ctx context.Context, doc *accounting.Document, expected shared.RowVersion) error {
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("id = ? AND row_version = ? AND deleted = ?", doc.ID, []byte(expected), false).
		Updates(map[string]any{
			"number":       doc.Number,
			"type":         doc.Type,
			"partner_name": doc.PartnerName,
			"issue_date":   doc.IssueDate,
			"currency":     doc.Currency,
			"status":       doc.Status,
			"note":         doc.Note,
			"row_version":  []byte(doc.RowVersion),
			"updated_at":   doc.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.staleWriteError(ctx, doc.ID, expected)
	}
	return nil
}

// Delete marks a document deleted with a conditional write keyed on the
// expected row version
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	token := shared.NewRowVersion()
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
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

func (r *GormDocumentRepository) staleWriteError(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	var current models.DocumentModel
	if err := r.db.WithContext(ctx).First(&current, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	if current.Deleted {
		return shared.ErrNotFound
	}
	return shared.NewConflictError("document", id, expected, shared.RowVersion(current.RowVersion))
}

// Ensure GormDocumentRepository implements DocumentRepository
var _ accounting.DocumentRepository = (*GormDocumentRepository)(nil)
