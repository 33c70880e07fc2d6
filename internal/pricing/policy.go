package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/drucklab/backend-shop/internal/money"
)

// CustomerClass decides whether a customer sees net or gross prices.
type CustomerClass string

const (
	// ClassBusiness customers are billed net.
	ClassBusiness CustomerClass = "business"
	// ClassConsumer customers are billed gross (net plus VAT).
	ClassConsumer CustomerClass = "consumer"
)

// CustomerContext carries the pricing policy for the current customer. It is
// passed explicitly into every pricing function instead of being read from
// session state, so the engine stays a pure function of its inputs.
type CustomerContext struct {
	Class CustomerClass
	// VATRate is the fractional rate, e.g. 0.19 for 19%.
	VATRate decimal.Decimal
}

func (c CustomerContext) vatFactor() decimal.Decimal {
	return decimal.NewFromInt(1).Add(c.VATRate)
}

// UnitPrice converts a net unit price into the user-facing unit price.
func (c CustomerContext) UnitPrice(net decimal.Decimal) decimal.Decimal {
	if c.Class == ClassBusiness {
		return money.Round(net)
	}
	return money.Round(net.Mul(c.vatFactor()))
}

// TotalPrice multiplies the already-rounded user unit price by the quantity.
// Per-unit rounding compounds across large heterogeneous orders; callers
// needing exact totals accumulate net through the quote calculator instead.
func (c CustomerContext) TotalPrice(net decimal.Decimal, quantity int) decimal.Decimal {
	return money.Round(c.UnitPrice(net).Mul(decimal.NewFromInt(int64(quantity))))
}
