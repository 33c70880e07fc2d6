package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drucklab/backend-shop/internal/pricing"
)

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestTableResolve(t *testing.T) {
	table := pricing.Table{
		{MinQuantity: 1, MaxQuantity: intPtr(49), Price: decPtr("2.50")},
		{MinQuantity: 50, MaxQuantity: nil, Price: decPtr("1.80")},
	}

	tier, index, ok := table.Resolve(10)
	require.True(t, ok)
	require.Equal(t, 0, index)
	require.True(t, tier.Price.Equal(decimal.RequireFromString("2.50")))

	tier, index, ok = table.Resolve(60)
	require.True(t, ok)
	require.Equal(t, 1, index)
	require.True(t, tier.Price.Equal(decimal.RequireFromString("1.80")))
}

func TestTableResolveBelowSmallestTier(t *testing.T) {
	table := pricing.Table{
		{MinQuantity: 25, Percent: decPtr("10")},
	}
	_, index, ok := table.Resolve(10)
	require.False(t, ok)
	require.Equal(t, -1, index)
}

func TestTableResolveFirstMatchWins(t *testing.T) {
	table := pricing.Table{
		{MinQuantity: 1, MaxQuantity: nil, Percent: decPtr("5")},
		{MinQuantity: 1, MaxQuantity: nil, Percent: decPtr("50")},
	}
	tier, index, ok := table.Resolve(100)
	require.True(t, ok)
	require.Equal(t, 0, index)
	require.True(t, tier.Percent.Equal(decimal.RequireFromString("5")))
}

func TestTableResolveZeroQuantity(t *testing.T) {
	table := pricing.Table{{MinQuantity: 1, MaxQuantity: nil, Percent: decPtr("10")}}
	_, _, ok := table.Resolve(0)
	require.False(t, ok)
}
