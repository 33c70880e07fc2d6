package pricing

import "github.com/shopspring/decimal"

// Tier maps a quantity range to either a percentage discount (product
// tables) or a flat net unit price (decoration tables). MaxQuantity nil
// means the range is unbounded upwards.
type Tier struct {
	MinQuantity int              `json:"minQuantity"`
	MaxQuantity *int             `json:"maxQuantity"`
	Percent     *decimal.Decimal `json:"discountPercentage"`
	Price       *decimal.Decimal `json:"price"`
}

// Contains reports whether the quantity falls into this tier's range.
func (t Tier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || quantity <= *t.MaxQuantity
}

// Table is an ordered list of tiers. Callers construct tables ascending and
// non-overlapping; Resolve never sorts.
type Table []Tier

// Resolve returns the first tier containing the quantity together with its
// position in the table. The position matters for decoration tables, where
// tier i is paired with the decoration product's variant i for checkout
// line-item mapping.
func (t Table) Resolve(quantity int) (Tier, int, bool) {
	for i, tier := range t {
		if tier.Contains(quantity) {
			return tier, i, true
		}
	}
	return Tier{}, -1, false
}
