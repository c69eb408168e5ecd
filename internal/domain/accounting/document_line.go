package accounting

import (
	"strings"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentLine is a single position on an accounting document.
// Amount is always quantity × unit price at the fixed-point scale;
// it is recomputed on every write, never accepted from the caller.
type DocumentLine struct {
	shared.VersionedBase
	DocumentID  uuid.UUID
	LineNumber  int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	VATRate     decimal.Decimal
	Amount      decimal.Decimal
}

// NewDocumentLine creates a document line after validating its invariants
func NewDocumentLine(documentID uuid.UUID, lineNumber int, description string, quantity, unitPrice, vatRate decimal.Decimal) (*DocumentLine, error) {
	if documentID == uuid.Nil {
		return nil, shared.NewValidationError("document ID is required")
	}
	if lineNumber <= 0 {
		return nil, shared.NewValidationError("line number must be positive")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("description is required")
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("unit price cannot be negative")
	}
	if vatRate.IsNegative() {
		return nil, shared.NewValidationError("VAT rate cannot be negative")
	}

	line := &DocumentLine{
		VersionedBase: shared.NewVersionedBase(),
		DocumentID:    documentID,
		LineNumber:    lineNumber,
		Description:   description,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		VATRate:       vatRate,
	}
	line.recalculate()
	return line, nil
}

// UpdateDetails replaces the mutable fields, recomputes the amount and
// issues a new token
func (l *DocumentLine) UpdateDetails(description string, quantity, unitPrice, vatRate decimal.Decimal) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewValidationError("description is required")
	}
	if quantity.IsNegative() {
		return shared.NewValidationError("quantity cannot be negative")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("unit price cannot be negative")
	}
	if vatRate.IsNegative() {
		return shared.NewValidationError("VAT rate cannot be negative")
	}
	l.Description = description
	l.Quantity = quantity
	l.UnitPrice = unitPrice
	l.VATRate = vatRate
	l.recalculate()
	l.Touch()
	return nil
}

// VATAmount returns the VAT portion of the line amount
func (l *DocumentLine) VATAmount() decimal.Decimal {
	return l.Amount.Mul(l.VATRate).Div(decimal.NewFromInt(100)).Round(valueobject.AmountPlaces)
}

// MarkDeleted flags the line as logically deleted and advances the token
func (l *DocumentLine) MarkDeleted() {
	l.Deleted = true
	l.Touch()
}

func (l *DocumentLine) recalculate() {
	l.Amount = l.Quantity.Mul(l.UnitPrice).Round(valueobject.AmountPlaces)
}
