package costing

import (
	"strings"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostHeader groups dependent cost lines under one due date, description
// and currency. Amount is the nominal total to spread over the lines.
// Net and VAT totals are derived from the loaded lines on demand and are
// never stored, so there is no second source of truth to keep consistent.
type CostHeader struct {
	shared.VersionedBase
	DocumentID  uuid.UUID
	Description string
	DueDate     time.Time
	Currency    valueobject.Currency
	Amount      decimal.Decimal
	Lines       []CostLine
}

// NewCostHeader creates a cost header after validating its invariants
func NewCostHeader(documentID uuid.UUID, description string, dueDate time.Time, currency valueobject.Currency, amount decimal.Decimal) (*CostHeader, error) {
	if documentID == uuid.Nil {
		return nil, shared.NewValidationError("document ID is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("description is required")
	}
	if dueDate.IsZero() {
		return nil, shared.NewValidationError("due date is required")
	}
	if !currency.IsValid() {
		return nil, shared.NewValidationError("invalid currency: " + currency.String())
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("amount cannot be negative")
	}

	return &CostHeader{
		VersionedBase: shared.NewVersionedBase(),
		DocumentID:    documentID,
		Description:   description,
		DueDate:       dueDate,
		Currency:      currency,
		Amount:        amount.Round(valueobject.AmountPlaces),
	}, nil
}

// UpdateDetails replaces the mutable fields and issues a new token
func (h *CostHeader) UpdateDetails(description string, dueDate time.Time, amount decimal.Decimal) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewValidationError("description is required")
	}
	if dueDate.IsZero() {
		return shared.NewValidationError("due date is required")
	}
	if amount.IsNegative() {
		return shared.NewValidationError("amount cannot be negative")
	}
	h.Description = description
	h.DueDate = dueDate
	h.Amount = amount.Round(valueobject.AmountPlaces)
	h.Touch()
	return nil
}

// NetTotal sums the assigned amounts of the loaded lines
func (h *CostHeader) NetTotal() valueobject.Money {
	total := decimal.Zero
	for i := range h.Lines {
		total = total.Add(h.Lines[i].Amount)
	}
	m, _ := valueobject.NewMoney(total, h.Currency)
	return m
}

// VATTotal sums the VAT portions of the loaded lines
func (h *CostHeader) VATTotal() valueobject.Money {
	total := decimal.Zero
	for i := range h.Lines {
		total = total.Add(h.Lines[i].VATAmount())
	}
	m, _ := valueobject.NewMoney(total, h.Currency)
	return m
}

// MarkDeleted flags the header as logically deleted and advances the token
func (h *CostHeader) MarkDeleted() {
	h.Deleted = true
	h.Touch()
}
