package accounting

import (
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
)

// DocumentType represents the kind of accounting document
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "INVOICE"     // incoming invoice
	DocumentTypeCreditNote DocumentType = "CREDIT_NOTE" // credit note
	DocumentTypeReceipt    DocumentType = "RECEIPT"     // cash receipt
)

// IsValid checks if the type is a valid DocumentType
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeInvoice, DocumentTypeCreditNote, DocumentTypeReceipt:
		return true
	}
	return false
}

// String returns the string representation of DocumentType
func (t DocumentType) String() string {
	return string(t)
}

// DocumentStatus represents the lifecycle state of a document
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"
	DocumentStatusPosted    DocumentStatus = "POSTED"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusPosted, DocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status allows no further transitions
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusCancelled
}

// Document is an accounting document header (invoice, credit note, receipt).
// Line items and dependent costs reference it by ID.
type Document struct {
	shared.VersionedBase
	Number      string
	Type        DocumentType
	PartnerName string
	IssueDate   time.Time
	Currency    valueobject.Currency
	Status      DocumentStatus
	Note        string
}

// NewDocument creates a draft document after validating its invariants
func NewDocument(number string, docType DocumentType, partnerName string, issueDate time.Time, currency valueobject.Currency) (*Document, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewValidationError("document number is required")
	}
	if !docType.IsValid() {
		return nil, shared.NewValidationError("invalid document type: " + docType.String())
	}
	if strings.TrimSpace(partnerName) == "" {
		return nil, shared.NewValidationError("partner name is required")
	}
	if issueDate.IsZero() {
		return nil, shared.NewValidationError("issue date is required")
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError("invalid currency: " + currency.String())
	}

	return &Document{
		VersionedBase: shared.NewVersionedBase(),
		Number:        number,
		Type:          docType,
		PartnerName:   partnerName,
		IssueDate:     issueDate,
		Currency:      currency,
		Status:        DocumentStatusDraft,
	}, nil
}

// UpdateDetails replaces the mutable business fields and issues a new token
func (d *Document) UpdateDetails(partnerName string, issueDate time.Time, note string) error {
	if d.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if strings.TrimSpace(partnerName) == "" {
		return shared.NewValidationError("partner name is required")
	}
	if issueDate.IsZero() {
		return shared.NewValidationError("issue date is required")
	}
	d.PartnerName = partnerName
	d.IssueDate = issueDate
	d.Note = note
	d.Touch()
	return nil
}

// Post transitions the document from draft to posted
func (d *Document) Post() error {
	if d.Status != DocumentStatusDraft {
		return shared.ErrInvalidState
	}
	d.Status = DocumentStatusPosted
	d.Touch()
	return nil
}

// Cancel transitions the document to cancelled
func (d *Document) Cancel() error {
	if d.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	d.Status = DocumentStatusCancelled
	d.Touch()
	return nil
}

// MarkDeleted flags the document as logically deleted and advances the token
func (d *Document) MarkDeleted() {
	d.Deleted = true
	d.Touch()
}
