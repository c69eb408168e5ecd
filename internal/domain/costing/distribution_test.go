package costing

import (
	"testing"
	"time"

	"github.com/erp/accounting/internal/domain/shared"
	"github.com/erp/accounting/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributionMethod_IsValid(t *testing.T) {
	tests := []struct {
		method   DistributionMethod
		expected bool
	}{
		{DistributionByQuantity, true},
		{DistributionByValue, true},
		{DistributionManual, true},
		{DistributionMethod(0), false},
		{DistributionMethod(4), false},
		{DistributionMethod(-1), false},
	}

	for _, tc := range tests {
		t.Run(tc.method.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.method.IsValid())
		})
	}
}

func TestDistributionMethod_String(t *testing.T) {
	assert.Equal(t, "BY_QUANTITY", DistributionByQuantity.String())
	assert.Equal(t, "BY_VALUE", DistributionByValue.String())
	assert.Equal(t, "MANUAL", DistributionManual.String())
	assert.Equal(t, "UNKNOWN(9)", DistributionMethod(9).String())
}

func newTestLine(t *testing.T, headerID uuid.UUID, amount, quantity string) *CostLine {
	t.Helper()
	line, err := NewCostLine(headerID,
		"freight",
		decimal.RequireFromString(amount),
		decimal.RequireFromString(quantity),
		decimal.NewFromInt(19),
	)
	require.NoError(t, err)
	return line
}

func TestDistribute_ByQuantity(t *testing.T) {
	headerID := uuid.New()

	t.Run("splits proportionally to quantity", func(t *testing.T) {
		lines := []*CostLine{
			newTestLine(t, headerID, "0", "1"),
			newTestLine(t, headerID, "0", "2"),
		}

		result, err := Distribute(headerID, decimal.RequireFromString("120.00"), lines,
			DistributionRequest{Method: DistributionByQuantity})
		require.NoError(t, err)

		assert.Equal(t, 2, result.ItemsProcessed)
		assert.True(t, decimal.RequireFromString("120.00").Equal(result.TotalDistributed))
		assert.True(t, decimal.RequireFromString("40.00").Equal(lines[0].Amount), "got %s", lines[0].Amount)
		assert.True(t, decimal.RequireFromString("80.00").Equal(lines[1].Amount), "got %s", lines[1].Amount)
	})

	t.Run("last line absorbs rounding residue", func(t *testing.T) {
		lines := []*CostLine{
			newTestLine(t, headerID, "0", "1"),
			newTestLine(t, headerID, "0", "1"),
			newTestLine(t, headerID, "0", "1"),
		}

		result, err := Distribute(headerID, decimal.RequireFromString("100.00"), lines,
			DistributionRequest{Method: DistributionByQuantity})
		require.NoError(t, err)

		assert.True(t, decimal.RequireFromString("33.3333").Equal(lines[0].Amount))
		assert.True(t, decimal.RequireFromString("33.3333").Equal(lines[1].Amount))
		assert.True(t, decimal.RequireFromString("33.3334").Equal(lines[2].Amount))
		assert.True(t, decimal.RequireFromString("100.00").Equal(result.TotalDistributed))
	})

	t.Run("stamps method and issues fresh tokens", func(t *testing.T) {
		line := newTestLine(t, headerID, "0", "1")
		before := line.GetRowVersion()

		_, err := Distribute(headerID, decimal.NewFromInt(10), []*CostLine{line},
			DistributionRequest{Method: DistributionByQuantity})
		require.NoError(t, err)

		assert.Equal(t, DistributionByQuantity, line.Method)
		assert.False(t, before.Equal(line.GetRowVersion()))
	})
}

func TestDistribute_ByValue(t *testing.T) {
	headerID := uuid.New()

	t.Run("splits proportionally to current amount", func(t *testing.T) {
		lines := []*CostLine{
			newTestLine(t, headerID, "30.00", "0"),
			newTestLine(t, headerID, "70.00", "0"),
		}

		result, err := Distribute(headerID, decimal.RequireFromString("50.00"), lines,
			DistributionRequest{Method: DistributionByValue})
		require.NoError(t, err)

		assert.True(t, decimal.RequireFromString("15.00").Equal(lines[0].Amount))
		assert.True(t, decimal.RequireFromString("35.00").Equal(lines[1].Amount))
		assert.True(t, decimal.RequireFromString("50.00").Equal(result.TotalDistributed))
	})

	t.Run("all zero amounts fall back to equal split", func(t *testing.T) {
		lines := []*CostLine{
			newTestLine(t, headerID, "0", "5"),
			newTestLine(t, headerID, "0", "5"),
			newTestLine(t, headerID, "0", "5"),
		}

		result, err := Distribute(headerID, decimal.RequireFromString("100.00"), lines,
			DistributionRequest{Method: DistributionByValue})
		require.NoError(t, err)

		assert.True(t, decimal.RequireFromString("33.3333").Equal(lines[0].Amount))
		assert.True(t, decimal.RequireFromString("33.3333").Equal(lines[1].Amount))
		assert.True(t, decimal.RequireFromString("33.3334").Equal(lines[2].Amount))
		assert.True(t, decimal.RequireFromString("100.00").Equal(result.TotalDistributed))
	})
}

func TestDistribute_ExactSum(t *testing.T) {
	headerID := uuid.New()

	totals := []string{"100.00", "0.01", "999.9999", "123.4567", "7"}
	weights := [][]string{
		{"1", "1", "1"},
		{"3", "7"},
		{"1", "2", "4", "8", "16"},
		{"0.5", "0.25", "0.25"},
		{"13", "29", "31", "37"},
	}

	for _, total := range totals {
		for _, ws := range weights {
			lines := make([]*CostLine, len(ws))
			for i, w := range ws {
				lines[i] = newTestLine(t, headerID, "0", w)
			}

			result, err := Distribute(headerID, decimal.RequireFromString(total), lines,
				DistributionRequest{Method: DistributionByQuantity})
			require.NoError(t, err)

			sum := decimal.Zero
			for _, l := range lines {
				sum = sum.Add(l.Amount)
			}
			assert.True(t, decimal.RequireFromString(total).Equal(sum),
				"total %s weights %v: shares sum to %s", total, ws, sum)
			assert.True(t, decimal.RequireFromString(total).Equal(result.TotalDistributed))
		}
	}
}

func TestDistribute_OrderSensitivity(t *testing.T) {
	headerID := uuid.New()
	total := decimal.RequireFromString("100.00")

	first := newTestLine(t, headerID, "0", "1")
	second := newTestLine(t, headerID, "0", "1")
	third := newTestLine(t, headerID, "0", "1")

	_, err := Distribute(headerID, total, []*CostLine{first, second, third},
		DistributionRequest{Method: DistributionByQuantity})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("33.3334").Equal(third.Amount))

	// Swapping two equal-weight lines moves the residue to the new last
	// line but never changes the distributed total.
	_, err = Distribute(headerID, total, []*CostLine{first, third, second},
		DistributionRequest{Method: DistributionByQuantity})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("33.3334").Equal(second.Amount))
	assert.True(t, decimal.RequireFromString("33.3333").Equal(first.Amount))

	sum := first.Amount.Add(second.Amount).Add(third.Amount)
	assert.True(t, total.Equal(sum))
}

func TestDistribute_Manual(t *testing.T) {
	headerID := uuid.New()

	t.Run("applies supplied amounts verbatim", func(t *testing.T) {
		itemA := newTestLine(t, headerID, "0", "9")
		itemB := newTestLine(t, headerID, "0", "1")

		result, err := Distribute(headerID, decimal.RequireFromString("100.00"),
			[]*CostLine{itemA, itemB},
			DistributionRequest{
				Method: DistributionManual,
				Amounts: map[uuid.UUID]decimal.Decimal{
					itemA.ID: decimal.RequireFromString("25.50"),
					itemB.ID: decimal.RequireFromString("74.50"),
				},
			})
		require.NoError(t, err)

		assert.Equal(t, 2, result.ItemsProcessed)
		assert.True(t, decimal.RequireFromString("100.00").Equal(result.TotalDistributed))
		assert.True(t, decimal.RequireFromString("25.50").Equal(itemA.Amount))
		assert.True(t, decimal.RequireFromString("74.50").Equal(itemB.Amount))
	})

	t.Run("does not reconcile against the nominal total", func(t *testing.T) {
		line := newTestLine(t, headerID, "0", "1")

		result, err := Distribute(headerID, decimal.RequireFromString("100.00"),
			[]*CostLine{line},
			DistributionRequest{
				Method:  DistributionManual,
				Amounts: map[uuid.UUID]decimal.Decimal{line.ID: decimal.RequireFromString("1.00")},
			})
		require.NoError(t, err)

		assert.Equal(t, 1, result.ItemsProcessed)
		assert.True(t, decimal.RequireFromString("1.00").Equal(result.TotalDistributed))
	})

	t.Run("rejects empty mapping", func(t *testing.T) {
		line := newTestLine(t, headerID, "5.00", "1")
		before := line.Amount

		result, err := Distribute(headerID, decimal.NewFromInt(100), []*CostLine{line},
			DistributionRequest{Method: DistributionManual})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		assert.Equal(t, 0, result.ItemsProcessed)
		assert.True(t, before.Equal(line.Amount), "no partial application")
	})

	t.Run("unknown line ID aborts the whole run", func(t *testing.T) {
		line := newTestLine(t, headerID, "5.00", "1")
		before := line.Amount

		result, err := Distribute(headerID, decimal.NewFromInt(100), []*CostLine{line},
			DistributionRequest{
				Method: DistributionManual,
				Amounts: map[uuid.UUID]decimal.Decimal{
					line.ID:    decimal.NewFromInt(40),
					uuid.New(): decimal.NewFromInt(60),
				},
			})

		require.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, 0, result.ItemsProcessed)
		assert.True(t, before.Equal(line.Amount), "no partial application")
	})
}

func TestDistribute_EdgeCases(t *testing.T) {
	headerID := uuid.New()

	t.Run("zero lines is a no-op", func(t *testing.T) {
		result, err := Distribute(headerID, decimal.NewFromInt(100), nil,
			DistributionRequest{Method: DistributionByQuantity})
		require.NoError(t, err)
		assert.Equal(t, 0, result.ItemsProcessed)
		assert.True(t, result.TotalDistributed.IsZero())
	})

	t.Run("unsupported method is rejected", func(t *testing.T) {
		line := newTestLine(t, headerID, "0", "1")

		_, err := Distribute(headerID, decimal.NewFromInt(100), []*CostLine{line},
			DistributionRequest{Method: DistributionMethod(7)})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
		assert.Contains(t, domainErr.Message, "method")
	})

	t.Run("single line receives the full total", func(t *testing.T) {
		line := newTestLine(t, headerID, "0", "3")

		result, err := Distribute(headerID, decimal.RequireFromString("99.99"), []*CostLine{line},
			DistributionRequest{Method: DistributionByQuantity})
		require.NoError(t, err)

		assert.True(t, decimal.RequireFromString("99.99").Equal(line.Amount))
		assert.Equal(t, 1, result.ItemsProcessed)
	})
}

func TestCostHeader_DerivedTotals(t *testing.T) {
	doc := uuid.New()
	header, err := NewCostHeader(doc, "freight and customs", time.Now().AddDate(0, 1, 0),
		valueobject.EUR, decimal.RequireFromString("120.00"))
	require.NoError(t, err)

	lineA, err := NewCostLine(header.ID, "freight", decimal.RequireFromString("100.00"),
		decimal.NewFromInt(1), decimal.NewFromInt(19))
	require.NoError(t, err)
	lineB, err := NewCostLine(header.ID, "customs", decimal.RequireFromString("20.00"),
		decimal.NewFromInt(1), decimal.NewFromInt(0))
	require.NoError(t, err)
	header.Lines = []CostLine{*lineA, *lineB}

	assert.True(t, decimal.RequireFromString("120.00").Equal(header.NetTotal().Amount()))
	assert.True(t, decimal.RequireFromString("19.00").Equal(header.VATTotal().Amount()))
	assert.Equal(t, valueobject.EUR, header.NetTotal().Currency())
}
