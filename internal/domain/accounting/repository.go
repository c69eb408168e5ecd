package accounting

import (
	"context"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter defines filtering options for document list queries
type DocumentFilter struct {
	Search   string
	Type     DocumentType
	Status   DocumentStatus
	Page     int
	PageSize int
}

// DocumentRepository defines persistence operations for documents.
// Update and Delete are conditional writes: the store re-verifies the
// expected row version in the same statement and reports a conflict when
// zero rows match, closing the window between the application-level token
// comparison and the write.
type DocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindAll(ctx context.Context, filter DocumentFilter) ([]Document, int64, error)
	Create(ctx context.Context, doc *Document) error
	Update(ctx context.Context, doc *Document, expected shared.RowVersion) error
	Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error
}

// DocumentLineRepository defines persistence operations for document lines
type DocumentLineRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DocumentLine, error)
	FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]DocumentLine, error)
	Create(ctx context.Context, line *DocumentLine) error
	Update(ctx context.Context, line *DocumentLine, expected shared.RowVersion) error
	Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error
}
