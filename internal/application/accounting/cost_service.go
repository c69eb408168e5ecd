package accounting

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/accounting"
	"github.com/erp/accounting/internal/domain/costing"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostService provides application-level operations for dependent costs and
// their distribution across cost lines.
type CostService struct {
	docRepo    accounting.DocumentRepository
	headerRepo costing.CostHeaderRepository
	lineRepo   costing.CostLineRepository
}

// NewCostService creates a new CostService
func NewCostService(docRepo accounting.DocumentRepository, headerRepo costing.CostHeaderRepository, lineRepo costing.CostLineRepository) *CostService {
	return &CostService{
		docRepo:    docRepo,
		headerRepo: headerRepo,
		lineRepo:   lineRepo,
	}
}

// CostHeaderResponse represents a cost header in API responses.
// NetTotal and VATTotal are derived from the loaded lines.
type CostHeaderResponse struct {
	ID          uuid.UUID          `json:"id"`
	DocumentID  uuid.UUID          `json:"document_id"`
	Description string             `json:"description"`
	DueDate     time.Time          `json:"due_date"`
	Currency    string             `json:"currency"`
	Amount      decimal.Decimal    `json:"amount"`
	NetTotal    decimal.Decimal    `json:"net_total"`
	VATTotal    decimal.Decimal    `json:"vat_total"`
	Lines       []CostLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	RowVersion  string             `json:"row_version"`
}

// CostLineResponse represents a cost line in API responses
type CostLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	CostHeaderID uuid.UUID       `json:"cost_header_id"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	VATRate      decimal.Decimal `json:"vat_rate"`
	Amount       decimal.Decimal `json:"amount"`
	Method       int             `json:"method,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	RowVersion   string          `json:"row_version"`
}

// CreateCostHeaderRequest represents a request to create a cost header
type CreateCostHeaderRequest struct {
	DocumentID  uuid.UUID       `json:"document_id" binding:"required"`
	Description string          `json:"description" binding:"required,max=500"`
	DueDate     time.Time       `json:"due_date" binding:"required"`
	Currency    string          `json:"currency" binding:"required,currency"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// UpdateCostHeaderRequest represents a request to update a cost header
type UpdateCostHeaderRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	DueDate     time.Time       `json:"due_date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
}

// CreateCostLineRequest represents a request to add a line to a cost header
type CreateCostLineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    decimal.Decimal `json:"quantity"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// UpdateCostLineRequest represents a request to update a cost line
type UpdateCostLineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount"`
	Quantity    decimal.Decimal `json:"quantity"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// DistributeRequest represents a request to run a distribution
type DistributeRequest struct {
	Method  int                        `json:"method" binding:"required"`
	Amounts map[uuid.UUID]decimal.Decimal `json:"amounts,omitempty"`
}

// DistributionResponse summarizes a distribution run
type DistributionResponse struct {
	CostHeaderID     uuid.UUID       `json:"cost_header_id"`
	ItemsProcessed   int             `json:"items_processed"`
	TotalDistributed decimal.Decimal `json:"total_distributed"`
}

// ListCostHeaders returns cost headers matching the filter
func (s *CostService) ListCostHeaders(ctx context.Context, filter costing.CostHeaderFilter) ([]CostHeaderResponse, int64, error) {
	headers, total, err := s.headerRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CostHeaderResponse, len(headers))
	for i := range headers {
		responses[i] = toCostHeaderResponse(&headers[i])
	}
	return responses, total, nil
}

// GetCostHeader returns a cost header with its lines and derived totals
func (s *CostService) GetCostHeader(ctx context.Context, id uuid.UUID) (*CostHeaderResponse, error) {
	header, err := s.headerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCostHeaderResponse(header)
	return &resp, nil
}

// CreateCostHeader creates a cost header attached to an existing document
func (s *CostService) CreateCostHeader(ctx context.Context, req CreateCostHeaderRequest) (*CostHeaderResponse, error) {
	if _, err := s.docRepo.FindByID(ctx, req.DocumentID); err != nil {
		return nil, err
	}

	header, err := costing.NewCostHeader(req.DocumentID, req.Description, req.DueDate,
		valueobject.Currency(req.Currency), req.Amount)
	if err != nil {
		return nil, err
	}
	if err := s.headerRepo.Create(ctx, header); err != nil {
		return nil, err
	}
	resp := toCostHeaderResponse(header)
	return &resp, nil
}

// UpdateCostHeader applies field changes after the concurrency check
func (s *CostService) UpdateCostHeader(ctx context.Context, id uuid.UUID, expected shared.RowVersion, req UpdateCostHeaderRequest) (*CostHeaderResponse, error) {
	header, err := s.headerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRowVersion("cost header", header.ID, expected, header.RowVersion); err != nil {
		return nil, err
	}

	if err := header.UpdateDetails(req.Description, req.DueDate, req.Amount); err != nil {
		return nil, err
	}
	if err := s.headerRepo.Update(ctx, header, expected); err != nil {
		return nil, err
	}
	resp := toCostHeaderResponse(header)
	return &resp, nil
}

// DeleteCostHeader logically deletes a cost header after the concurrency check
func (s *CostService) DeleteCostHeader(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	header, err := s.headerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkRowVersion("cost header", header.ID, expected, header.RowVersion); err != nil {
		return err
	}
	return s.headerRepo.Delete(ctx, id, expected)
}

// GetCostLine returns a single cost line by ID
func (s *CostService) GetCostLine(ctx context.Context, id uuid.UUID) (*CostLineResponse, error) {
	line, err := s.lineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCostLineResponse(line)
	return &resp, nil
}

// CreateCostLine appends a line to a cost header
func (s *CostService) CreateCostLine(ctx context.Context, headerID uuid.UUID, req CreateCostLineRequest) (*CostLineResponse, error) {
	if _, err := s.headerRepo.FindByID(ctx, headerID); err != nil {
		return nil, err
	}

	line, err := costing.NewCostLine(headerID, req.Description, req.Amount, req.Quantity, req.VATRate)
	if err != nil {
		return nil, err
	}
	if err := s.lineRepo.Create(ctx, line); err != nil {
		return nil, err
	}
	resp := toCostLineResponse(line)
	return &resp, nil
}

// UpdateCostLine applies field changes after the concurrency check
func (s *CostService) UpdateCostLine(ctx context.Context, id uuid.UUID, expected shared.RowVersion, req UpdateCostLineRequest) (*CostLineResponse, error) {
	line, err := s.lineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRowVersion("cost line", line.ID, expected, line.RowVersion); err != nil {
		return nil, err
	}

	if err := line.UpdateDetails(req.Description, req.Amount, req.Quantity, req.VATRate); err != nil {
		return nil, err
	}
	if err := s.lineRepo.Update(ctx, line, expected); err != nil {
		return nil, err
	}
	resp := toCostLineResponse(line)
	return &resp, nil
}

// DeleteCostLine logically deletes a cost line after the concurrency check
func (s *CostService) DeleteCostLine(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	line, err := s.lineRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkRowVersion("cost line", line.ID, expected, line.RowVersion); err != nil {
		return err
	}
	return s.lineRepo.Delete(ctx, id, expected)
}

// Distribute runs a distribution over the header's lines and persists the
// resulting amounts in one transaction. The header's nominal amount is the
// total being spread. Per-line row versions are not checked: a distribution
// supersedes prior per-line amounts, so a concurrent manual edit to one
// line can be overwritten by this operation.
func (s *CostService) Distribute(ctx context.Context, headerID uuid.UUID, req DistributeRequest) (*DistributionResponse, error) {
	header, err := s.headerRepo.FindByID(ctx, headerID)
	if err != nil {
		return nil, err
	}

	// Lines come back in load order; the engine's last-line remainder
	// rule depends on it.
	lines := make([]*costing.CostLine, len(header.Lines))
	for i := range header.Lines {
		lines[i] = &header.Lines[i]
	}

	result, err := costing.Distribute(header.ID, header.Amount, lines, costing.DistributionRequest{
		Method:  costing.DistributionMethod(req.Method),
		Amounts: req.Amounts,
	})
	if err != nil {
		return nil, err
	}

	if result.ItemsProcessed > 0 {
		if err := s.headerRepo.SaveDistribution(ctx, header.ID, lines); err != nil {
			return nil, err
		}
	}

	return &DistributionResponse{
		CostHeaderID:     result.CostHeaderID,
		ItemsProcessed:   result.ItemsProcessed,
		TotalDistributed: result.TotalDistributed,
	}, nil
}

func toCostHeaderResponse(header *costing.CostHeader) CostHeaderResponse {
	lines := make([]CostLineResponse, len(header.Lines))
	for i := range header.Lines {
		lines[i] = toCostLineResponse(&header.Lines[i])
	}
	return CostHeaderResponse{
		ID:          header.ID,
		DocumentID:  header.DocumentID,
		Description: header.Description,
		DueDate:     header.DueDate,
		Currency:    header.Currency.String(),
		Amount:      header.Amount,
		NetTotal:    header.NetTotal().Amount(),
		VATTotal:    header.VATTotal().Amount(),
		Lines:       lines,
		CreatedAt:   header.CreatedAt,
		UpdatedAt:   header.UpdatedAt,
		RowVersion:  header.RowVersion.Encode(),
	}
}

func toCostLineResponse(line *costing.CostLine) CostLineResponse {
	return CostLineResponse{
		ID:           line.ID,
		CostHeaderID: line.CostHeaderID,
		Description:  line.Description,
		Quantity:     line.Quantity,
		VATRate:      line.VATRate,
		Amount:       line.Amount,
		Method:       int(line.Method),
		CreatedAt:    line.CreatedAt,
		UpdatedAt:    line.UpdatedAt,
		RowVersion:   line.RowVersion.Encode(),
	}
}
