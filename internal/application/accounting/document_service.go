package accounting

import (
	"context"
	"time"

	"github.com/erp/accounting/internal/domain/accounting"
	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentService provides application-level document and line operations.
// Every mutation runs the optimistic concurrency guard: the caller's
// expected row version is compared against the live one after load, and the
// repository re-verifies it in the write predicate.
type DocumentService struct {
	docRepo  accounting.DocumentRepository
	lineRepo accounting.DocumentLineRepository
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(docRepo accounting.DocumentRepository, lineRepo accounting.DocumentLineRepository) *DocumentService {
	return &DocumentService{
		docRepo:  docRepo,
		lineRepo: lineRepo,
	}
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID          uuid.UUID `json:"id"`
	Number      string    `json:"number"`
	Type        string    `json:"type"`
	PartnerName string    `json:"partner_name"`
	IssueDate   time.Time `json:"issue_date"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	RowVersion  string    `json:"row_version"`
}

// DocumentLineResponse represents a document line in API responses
type DocumentLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	DocumentID  uuid.UUID       `json:"document_id"`
	LineNumber  int             `json:"line_number"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Amount      decimal.Decimal `json:"amount"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	RowVersion  string          `json:"row_version"`
}

// CreateDocumentRequest represents a request to create a document
type CreateDocumentRequest struct {
	Number      string    `json:"number" binding:"required,max=50"`
	Type        string    `json:"type" binding:"required"`
	PartnerName string    `json:"partner_name" binding:"required,max=200"`
	IssueDate   time.Time `json:"issue_date" binding:"required"`
	Currency    string    `json:"currency" binding:"required,currency"`
	Note        string    `json:"note" binding:"max=500"`
}

// UpdateDocumentRequest represents a request to update a document
type UpdateDocumentRequest struct {
	PartnerName string    `json:"partner_name" binding:"required,max=200"`
	IssueDate   time.Time `json:"issue_date" binding:"required"`
	Note        string    `json:"note" binding:"max=500"`
}

// CreateDocumentLineRequest represents a request to add a line to a document
type CreateDocumentLineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// UpdateDocumentLineRequest represents a request to update a document line
type UpdateDocumentLineRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
	VATRate     decimal.Decimal `json:"vat_rate"`
}

// ListDocuments returns documents matching the filter
func (s *DocumentService) ListDocuments(ctx context.Context, filter accounting.DocumentFilter) ([]DocumentResponse, int64, error) {
	docs, total, err := s.docRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]DocumentResponse, len(docs))
	for i := range docs {
		responses[i] = toDocumentResponse(&docs[i])
	}
	return responses, total, nil
}

// GetDocument returns a single document by ID
func (s *DocumentService) GetDocument(ctx context.Context, id uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// CreateDocument creates a new draft document
func (s *DocumentService) CreateDocument(ctx context.Context, req CreateDocumentRequest) (*DocumentResponse, error) {
	doc, err := accounting.NewDocument(
		req.Number,
		accounting.DocumentType(req.Type),
		req.PartnerName,
		req.IssueDate,
		valueobject.Currency(req.Currency),
	)
	if err != nil {
		return nil, err
	}
	doc.Note = req.Note

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// UpdateDocument applies field changes after the concurrency check passes.
// The returned response carries the fresh row version for the next mutation.
func (s *DocumentService) UpdateDocument(ctx context.Context, id uuid.UUID, expected shared.RowVersion, req UpdateDocumentRequest) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRowVersion("document", doc.ID, expected, doc.RowVersion); err != nil {
		return nil, err
	}

	if err := doc.UpdateDetails(req.PartnerName, req.IssueDate, req.Note); err != nil {
		return nil, err
	}
	if err := s.docRepo.Update(ctx, doc, expected); err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// PostDocument transitions a draft document to posted
func (s *DocumentService) PostDocument(ctx context.Context, id uuid.UUID, expected shared.RowVersion) (*DocumentResponse, error) {
	return s.transition(ctx, id, expected, (*accounting.Document).Post)
}

// CancelDocument transitions a document to cancelled
func (s *DocumentService) CancelDocument(ctx context.Context, id uuid.UUID, expected shared.RowVersion) (*DocumentResponse, error) {
	return s.transition(ctx, id, expected, (*accounting.Document).Cancel)
}

func (s *DocumentService) transition(ctx context.Context, id uuid.UUID, expected shared.RowVersion, apply func(*accounting.Document) error) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRowVersion("document", doc.ID, expected, doc.RowVersion); err != nil {
		return nil, err
	}
	if err := apply(doc); err != nil {
		return nil, err
	}
	if err := s.docRepo.Update(ctx, doc, expected); err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc)
	return &resp, nil
}

// DeleteDocument logically deletes a document after the concurrency check
func (s *DocumentService) DeleteDocument(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	doc, err := s.docRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkRowVersion("document", doc.ID, expected, doc.RowVersion); err != nil {
		return err
	}
	return s.docRepo.Delete(ctx, id, expected)
}

// ListLines returns the lines of a document in line-number order
func (s *DocumentService) ListLines(ctx context.Context, documentID uuid.UUID) ([]DocumentLineResponse, error) {
	if _, err := s.docRepo.FindByID(ctx, documentID); err != nil {
		return nil, err
	}
	lines, err := s.lineRepo.FindByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	responses := make([]DocumentLineResponse, len(lines))
	for i := range lines {
		responses[i] = toDocumentLineResponse(&lines[i])
	}
	return responses, nil
}

// GetLine returns a single document line by ID
func (s *DocumentService) GetLine(ctx context.Context, id uuid.UUID) (*DocumentLineResponse, error) {
	line, err := s.lineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toDocumentLineResponse(line)
	return &resp, nil
}

// CreateLine appends a line to a document
func (s *DocumentService) CreateLine(ctx context.Context, documentID uuid.UUID, req CreateDocumentLineRequest) (*DocumentLineResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status.IsTerminal() {
		return nil, shared.ErrInvalidState
	}

	existing, err := s.lineRepo.FindByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	nextNumber := 1
	for i := range existing {
		if existing[i].LineNumber >= nextNumber {
			nextNumber = existing[i].LineNumber + 1
		}
	}

	line, err := accounting.NewDocumentLine(documentID, nextNumber, req.Description, req.Quantity, req.UnitPrice, req.VATRate)
	if err != nil {
		return nil, err
	}
	if err := s.lineRepo.Create(ctx, line); err != nil {
		return nil, err
	}
	resp := toDocumentLineResponse(line)
	return &resp, nil
}

// UpdateLine applies field changes to a line after the concurrency check
func (s *DocumentService) UpdateLine(ctx context.Context, id uuid.UUID, expected shared.RowVersion, req UpdateDocumentLineRequest) (*DocumentLineResponse, error) {
	line, err := s.lineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkRowVersion("document line", line.ID, expected, line.RowVersion); err != nil {
		return nil, err
	}

	if err := line.UpdateDetails(req.Description, req.Quantity, req.UnitPrice, req.VATRate); err != nil {
		return nil, err
	}
	if err := s.lineRepo.Update(ctx, line, expected); err != nil {
		return nil, err
	}
	resp := toDocumentLineResponse(line)
	return &resp, nil
}

// DeleteLine logically deletes a line after the concurrency check
func (s *DocumentService) DeleteLine(ctx context.Context, id uuid.UUID, expected shared.RowVersion) error {
	line, err := s.lineRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkRowVersion("document line", line.ID, expected, line.RowVersion); err != nil {
		return err
	}
	return s.lineRepo.Delete(ctx, id, expected)
}

// checkRowVersion is the application half of the concurrency guard. It is
// stateless and holds no locks: a mismatch is reported with the live token
// so the client can refresh without a second read. Matching here does not
// make the write safe on its own - the repository repeats the comparison
// inside the write predicate.
func checkRowVersion(resource string, id uuid.UUID, expected, current shared.RowVersion) error {
	if expected.IsZero() || !expected.Equal(current) {
		return shared.NewConflictError(resource, id, expected, current)
	}
	return nil
}

func toDocumentResponse(doc *accounting.Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		Number:      doc.Number,
		Type:        doc.Type.String(),
		PartnerName: doc.PartnerName,
		IssueDate:   doc.IssueDate,
		Currency:    doc.Currency.String(),
		Status:      doc.Status.String(),
		Note:        doc.Note,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
		RowVersion:  doc.RowVersion.Encode(),
	}
}

func toDocumentLineResponse(line *accounting.DocumentLine) DocumentLineResponse {
	return DocumentLineResponse{
		ID:          line.ID,
		DocumentID:  line.DocumentID,
		LineNumber:  line.LineNumber,
		Description: line.Description,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		VATRate:     line.VATRate,
		Amount:      line.Amount,
		VATAmount:   line.VATAmount(),
		CreatedAt:   line.CreatedAt,
		UpdatedAt:   line.UpdatedAt,
		RowVersion:  line.RowVersion.Encode(),
	}
}
