package costing

import (
	"fmt"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DistributionMethod selects how a cost total is apportioned across lines
type DistributionMethod int

const (
	// DistributionByQuantity weights each line by its quantity
	DistributionByQuantity DistributionMethod = 1
	// DistributionByValue weights each line by its current amount
	DistributionByValue DistributionMethod = 2
	// DistributionManual assigns caller-supplied amounts per line
	DistributionManual DistributionMethod = 3
)

// IsValid checks if the method is a supported selector
func (m DistributionMethod) IsValid() bool {
	switch m {
	case DistributionByQuantity, DistributionByValue, DistributionManual:
		return true
	}
	return false
}

// String returns a human-readable name for the method
func (m DistributionMethod) String() string {
	switch m {
	case DistributionByQuantity:
		return "BY_QUANTITY"
	case DistributionByValue:
		return "BY_VALUE"
	case DistributionManual:
		return "MANUAL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(m))
	}
}

// DistributionRequest specifies a distribution run. Amounts is consulted
// only in manual mode and maps cost line IDs to their assigned amounts.
type DistributionRequest struct {
	Method  DistributionMethod
	Amounts map[uuid.UUID]decimal.Decimal
}

// DistributionResult summarizes a distribution run. TotalDistributed equals
// the input total exactly in the weighted modes.
type DistributionResult struct {
	CostHeaderID     uuid.UUID
	ItemsProcessed   int
	TotalDistributed decimal.Decimal
}

// Distribute apportions total across the given lines in place according to
// the requested method. Lines must be in their load order: the last line
// absorbs the rounding residue, so the outcome is order-sensitive. The
// caller persists the mutated lines in one transaction.
func Distribute(headerID uuid.UUID, total decimal.Decimal, lines []*CostLine, req DistributionRequest) (DistributionResult, error) {
	result := DistributionResult{
		CostHeaderID:     headerID,
		TotalDistributed: decimal.Zero,
	}

	if !req.Method.IsValid() {
		return result, shared.NewValidationError(fmt.Sprintf("unsupported distribution method %d: must be 1 (by quantity), 2 (by value) or 3 (manual)", int(req.Method)))
	}

	if req.Method == DistributionManual {
		return distributeManual(result, lines, req)
	}
	return distributeWeighted(result, total, lines, req.Method)
}

func distributeWeighted(result DistributionResult, total decimal.Decimal, lines []*CostLine, method DistributionMethod) (DistributionResult, error) {
	if len(lines) == 0 {
		return result, nil
	}

	weightOf := func(l *CostLine) decimal.Decimal {
		if method == DistributionByQuantity {
			return l.Quantity
		}
		return l.Amount
	}

	totalWeight := decimal.Zero
	for _, l := range lines {
		totalWeight = totalWeight.Add(weightOf(l))
	}

	// Degenerate weights fall back to an equal split: the divisor becomes
	// the line count and any non-positive line weight counts as 1.
	equalSplit := totalWeight.Sign() <= 0
	if equalSplit {
		totalWeight = decimal.NewFromInt(int64(len(lines)))
	}

	one := decimal.NewFromInt(1)
	assigned := decimal.Zero
	for i, l := range lines {
		var share decimal.Decimal
		if i == len(lines)-1 {
			// The last line takes whatever is left so the shares sum to
			// the input total regardless of rounding drift.
			share = total.Sub(assigned)
		} else {
			w := weightOf(l)
			if equalSplit && w.Sign() <= 0 {
				w = one
			}
			share = total.Mul(w).Div(totalWeight).Round(valueobject.AmountPlaces)
		}
		l.AssignShare(share, method)
		assigned = assigned.Add(share)
	}

	result.ItemsProcessed = len(lines)
	result.TotalDistributed = assigned
	return result, nil
}

func distributeManual(result DistributionResult, lines []*CostLine, req DistributionRequest) (DistributionResult, error) {
	if len(req.Amounts) == 0 {
		return result, shared.NewValidationError("manual distribution requires explicit per-item amounts")
	}

	byID := make(map[uuid.UUID]*CostLine, len(lines))
	for _, l := range lines {
		byID[l.ID] = l
	}

	for id := range req.Amounts {
		if _, ok := byID[id]; !ok {
			return DistributionResult{CostHeaderID: result.CostHeaderID, TotalDistributed: decimal.Zero},
				fmt.Errorf("cost line %s: %w", id, shared.ErrNotFound)
		}
	}

	// The supplied amounts are applied verbatim. They are not reconciled
	// against the header total; the result reports whatever sum was given.
	assigned := decimal.Zero
	count := 0
	for _, l := range lines {
		amount, ok := req.Amounts[l.ID]
		if !ok {
			continue
		}
		l.AssignShare(amount.Round(valueobject.AmountPlaces), DistributionManual)
		assigned = assigned.Add(l.Amount)
		count++
	}

	result.ItemsProcessed = count
	result.TotalDistributed = assigned
	return result, nil
}
