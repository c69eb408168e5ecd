package costing

import (
	"context"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/google/uuid"
)

// CostHeaderFilter defines filtering options for cost header list queries
type CostHeaderFilter struct {
	DocumentID uuid.UUID
	Search     string
	Page       int
	PageSize   int
}

// CostHeaderRepository defines persistence operations for cost headers.
// FindByID loads the header together with its non-deleted lines in stable
// creation order; distribution depends on that order. Update and Delete are
// conditional writes keyed on the expected row version.
type CostHeaderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CostHeader, error)
	FindAll(ctx context.Context, filter CostHeaderFilter) ([]CostHeader, int64, error)
	Create(ctx context.Context, header *CostHeader) error
	Update(ctx context.Context, header *CostHeader, expected shared.RowVersion) error
	Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error
	// SaveDistribution persists the amounts, methods and fresh tokens of
	// all given lines atomically. Per-line tokens are deliberately not
	// checked: a distribution run supersedes prior amounts.
	SaveDistribution(ctx context.Context, headerID uuid.UUID, lines []*CostLine) error
}

// CostLineRepository defines persistence operations for cost lines
type CostLineRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CostLine, error)
	FindByHeaderID(ctx context.Context, headerID uuid.UUID) ([]CostLine, error)
	Create(ctx context.Context, line *CostLine) error
	Update(ctx context.Context, line *CostLine, expected shared.RowVersion) error
	Delete(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error
}
