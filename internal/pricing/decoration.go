package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/drucklab/backend-shop/internal/money"
)

// DecorationProduct is the per-side decoration sub-product from the catalog.
// Tiers carry flat net unit prices; tier i is paired with VariantIDs[i] for
// checkout line-item mapping. The positional coupling is a store-catalog
// convention and is preserved as-is.
type DecorationProduct struct {
	Title      string   `json:"title"`
	VariantIDs []string `json:"variantIds"`
	Tiers      Table    `json:"tiers"`
}

// DecorationInput bundles what the aggregator needs for one computation.
type DecorationInput struct {
	Sides         map[Side]SideConfig
	Catalog       map[Side]DecorationProduct
	TotalQuantity int
	Mode          DecorationMode
}

// DecorationResult is the outcome of one aggregation pass. Prices stay net;
// conversion to user currency happens in the quote calculator.
type DecorationResult struct {
	// Patch holds the synthetic variant entries keyed by the side's
	// decoration key. Sides with zero units are absent.
	Patch map[string]VariantEntry
	// PerPiece is the net decoration price per garment for each charged side
	// (tier unit price times units on that side).
	PerPiece map[Side]decimal.Decimal
	// Total is the net decoration price across all sides for the whole order.
	Total decimal.Decimal
}

// BuildDecorationPatch determines, per side, whether decoration pricing
// applies and at what tier. Decoration is optional revenue: a side whose
// quantity falls below the smallest tier, or whose catalog data is missing
// or malformed, is silently omitted rather than failing the quote.
func BuildDecorationPatch(in DecorationInput, report AnomalySink) DecorationResult {
	result := DecorationResult{
		Patch:    make(map[string]VariantEntry),
		PerPiece: make(map[Side]decimal.Decimal),
		Total:    money.Zero,
	}
	for _, side := range []Side{SideFront, SideBack} {
		sideCfg, ok := in.Sides[side]
		if !ok {
			continue
		}
		units := sideCfg.CountUnits(in.Mode)
		if units == 0 {
			continue
		}
		product, ok := in.Catalog[side]
		if !ok || len(product.Tiers) == 0 {
			report.report(AnomalyMalformedDecorations, string(side), "no decoration product or empty tier table")
			continue
		}
		tier, index, ok := product.Tiers.Resolve(in.TotalQuantity)
		if !ok {
			// Below the smallest tier: no decoration charge.
			continue
		}
		if tier.Price == nil {
			report.report(AnomalyMalformedDecorations, string(side), fmt.Sprintf("tier %d carries no price", index))
			continue
		}
		if index >= len(product.VariantIDs) {
			report.report(AnomalyMalformedDecorations, string(side), fmt.Sprintf("tier %d has no paired variant", index))
			continue
		}
		perPiece := tier.Price.Mul(decimal.NewFromInt(int64(units)))
		result.Patch[side.DecorationKey()] = VariantEntry{
			Kind:     KindDecoration,
			Side:     side,
			ID:       product.VariantIDs[index],
			Quantity: in.TotalQuantity * units,
			Price:    *tier.Price,
			Title:    product.Title,
			Units:    units,
		}
		result.PerPiece[side] = perPiece
		result.Total = result.Total.Add(perPiece.Mul(decimal.NewFromInt(int64(in.TotalQuantity))))
	}
	return result
}
