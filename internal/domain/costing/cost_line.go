package costing

import (
	"strings"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostLine is a single position of a dependent cost. Quantity doubles as
// the distribution weight in by-quantity mode; Amount holds the currently
// assigned share and doubles as the weight in by-value mode. The line's
// row version is independent of its header's.
type CostLine struct {
	shared.VersionedBase
	CostHeaderID uuid.UUID
	Description  string
	Quantity     decimal.Decimal
	VATRate      decimal.Decimal
	Amount       decimal.Decimal
	Method       DistributionMethod
}

// NewCostLine creates a cost line after validating its invariants
func NewCostLine(costHeaderID uuid.UUID, description string, amount, quantity, vatRate decimal.Decimal) (*CostLine, error) {
	if costHeaderID == uuid.Nil {
		return nil, shared.NewValidationError("cost header ID is required")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("description is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("amount cannot be negative")
	}
	if quantity.IsNegative() {
		return nil, shared.NewValidationError("quantity cannot be negative")
	}
	if vatRate.IsNegative() {
		return nil, shared.NewValidationError("VAT rate cannot be negative")
	}

	return &CostLine{
		VersionedBase: shared.NewVersionedBase(),
		CostHeaderID:  costHeaderID,
		Description:   description,
		Quantity:      quantity,
		VATRate:       vatRate,
		Amount:        amount.Round(valueobject.AmountPlaces),
	}, nil
}

// UpdateDetails replaces the mutable fields and issues a new token
func (l *CostLine) UpdateDetails(description string, amount, quantity, vatRate decimal.Decimal) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewValidationError("description is required")
	}
	if amount.IsNegative() {
		return shared.NewValidationError("amount cannot be negative")
	}
	if quantity.IsNegative() {
		return shared.NewValidationError("quantity cannot be negative")
	}
	if vatRate.IsNegative() {
		return shared.NewValidationError("VAT rate cannot be negative")
	}
	l.Description = description
	l.Amount = amount.Round(valueobject.AmountPlaces)
	l.Quantity = quantity
	l.VATRate = vatRate
	l.Touch()
	return nil
}

// VATAmount returns the VAT portion of the assigned amount
func (l *CostLine) VATAmount() decimal.Decimal {
	return l.Amount.Mul(l.VATRate).Div(decimal.NewFromInt(100)).Round(valueobject.AmountPlaces)
}

// AssignShare overwrites the line amount with a computed distribution share.
// Distribution supersedes the previous amount without a token check; the
// line still receives a fresh token so later mutations see the change.
func (l *CostLine) AssignShare(amount decimal.Decimal, method DistributionMethod) {
	l.Amount = amount
	l.Method = method
	l.Touch()
}

// MarkDeleted flags the line as logically deleted and advances the token
func (l *CostLine) MarkDeleted() {
	l.Deleted = true
	l.Touch()
}
