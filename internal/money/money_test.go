package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drucklab/backend-shop/internal/money"
)

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.852", "12.85"},
		{"12.855", "12.86"},
		{"12.845", "12.85"},
		{"-12.855", "-12.86"},
		{"0.005", "0.01"},
		{"142.8", "142.80"},
	}
	for _, tc := range cases {
		got := money.String(money.Round(decimal.RequireFromString(tc.in)))
		require.Equal(t, tc.want, got, "round %s", tc.in)
	}
}

func TestParseMalformedIsZero(t *testing.T) {
	require.True(t, money.Parse("not-a-price").IsZero())
	require.Equal(t, "19.90", money.String(money.Parse("19.9")))
}

func TestPercentMultiplier(t *testing.T) {
	factor := money.Percent(decimal.NewFromInt(10))
	discounted := decimal.NewFromInt(12).Mul(factor)
	require.Equal(t, "10.80", money.String(discounted))
}
