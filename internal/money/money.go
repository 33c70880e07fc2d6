// Package money holds the numeric helpers shared by the pricing core.
//
// All monetary amounts travel through the system as shopspring decimals at
// full precision. Rounding to two places happens exactly once, at the point
// a value is persisted or rendered; intermediate sums are never rounded.
package money

import "github.com/shopspring/decimal"

// Zero is the canonical zero amount.
var Zero = decimal.Zero

// Round rounds a monetary amount to two decimal places, halves away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// String renders an amount as a fixed two-decimal string after rounding.
func String(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FromFloat converts a float into a decimal amount without rounding it.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Parse converts a decimal string (e.g. a catalog price) into an amount.
// Invalid input yields zero so that malformed catalog data degrades to a
// free entry instead of failing the whole computation.
func Parse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Percent builds the multiplier (1 - pct/100) used for percentage discounts.
func Percent(pct decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100)))
}
