package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/drucklab/backend-shop/internal/money"
)

// Quote is the outcome of the tiered-unit pricing model. Monetary fields are
// two-decimal strings; VeredelungTotal is net, the per-piece fields are in
// the customer's currency view (net for business, gross for consumers).
type Quote struct {
	TotalPrice                string          `json:"totalPrice"`
	PricePerPiece             string          `json:"pricePerPiece"`
	AppliedDiscountPercentage string          `json:"appliedDiscountPercentage"`
	DiscountApplied           bool            `json:"discountApplied"`
	VeredelungTotal           string          `json:"veredelungTotal"`
	VeredelungPerPiece        map[Side]string `json:"veredelungPerPiece"`
	TotalQuantity             int             `json:"totalQuantity"`

	// Patch carries the decoration entries the configuration should adopt;
	// sides absent from the patch must be dropped from prior state.
	Patch map[string]VariantEntry `json:"patch"`
}

// AllInclusiveQuote is the outcome of the all-inclusive pricing model.
type AllInclusiveQuote struct {
	TotalPrice                string `json:"totalPrice"`
	PricePerPiece             string `json:"pricePerPiece"`
	AppliedDiscountPercentage string `json:"appliedDiscountPercentage"`
	TotalQuantity             int    `json:"totalQuantity"`
	ProductDiscount           string `json:"productDiscount"`
}

// ComputeQuote derives the full tiered-unit quote for one configuration
// snapshot: base pricing over matched variants, percentage discount by
// total quantity, decoration charges per side, and the user-facing totals.
func ComputeQuote(product Product, cfg PurchaseConfiguration, customer CustomerContext, report AnomalySink) Quote {
	entries := cfg.SizeEntries()

	totalQuantity := 0
	netBaseTotal := money.Zero
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			continue
		}
		unit := product.ResolveUnitPrice(entry, report)
		netBaseTotal = netBaseTotal.Add(unit.Mul(decimal.NewFromInt(int64(entry.Quantity))))
		totalQuantity += entry.Quantity
	}

	qty := decimal.NewFromInt(int64(totalQuantity))
	netBasePerPiece := money.Zero
	if totalQuantity > 0 {
		netBasePerPiece = netBaseTotal.Div(qty)
	}

	appliedPercent := money.Zero
	discountApplied := false
	if tier, _, ok := product.DiscountTiers.Resolve(totalQuantity); ok && tier.Percent != nil {
		factor := money.Percent(*tier.Percent)
		netBaseTotal = netBaseTotal.Mul(factor)
		netBasePerPiece = netBasePerPiece.Mul(factor)
		appliedPercent = *tier.Percent
		discountApplied = true
	} else if !ok && len(product.DiscountTiers) > 0 {
		report.report(AnomalyMissingDiscountTier, product.Handle, "no tier for quantity")
	}

	mode := cfg.DecorationMode
	if mode == "" {
		mode = product.DecorationMode
	}
	decoration := BuildDecorationPatch(DecorationInput{
		Sides:         cfg.Sides,
		Catalog:       product.Decorations,
		TotalQuantity: totalQuantity,
		Mode:          mode,
	}, report)

	finalNetTotal := netBaseTotal.Add(decoration.Total)
	netPerPiece := money.Zero
	if totalQuantity > 0 {
		netPerPiece = finalNetTotal.Div(qty)
	}

	userPiece := customer.UnitPrice(netPerPiece)
	userTotal := money.Round(userPiece.Mul(qty))

	perPiece := make(map[Side]string, len(decoration.PerPiece))
	for side, net := range decoration.PerPiece {
		perPiece[side] = money.String(customer.UnitPrice(net))
	}

	return Quote{
		TotalPrice:                money.String(userTotal),
		PricePerPiece:             money.String(userPiece),
		AppliedDiscountPercentage: money.String(appliedPercent),
		DiscountApplied:           discountApplied,
		VeredelungTotal:           money.String(decoration.Total),
		VeredelungPerPiece:        perPiece,
		TotalQuantity:             totalQuantity,
		Patch:                     decoration.Patch,
	}
}

// ComputeAllInclusive derives the flat-price quote where decoration is
// pre-bundled into the unit price. Orders below the product's minimum are
// billed as if they met it; a literal zero order stays zero.
func ComputeAllInclusive(product Product, cfg PurchaseConfiguration, customer CustomerContext, report AnomalySink) AllInclusiveQuote {
	entries := cfg.SizeEntries()

	totalQuantity := 0
	for _, entry := range entries {
		if entry.Quantity > 0 {
			totalQuantity += entry.Quantity
		}
	}

	minOrder := product.MinOrderValue
	if minOrder <= 0 {
		minOrder = product.MinOrderQuantity
	}
	effectiveQuantity := totalQuantity
	if totalQuantity > 0 && effectiveQuantity < minOrder {
		effectiveQuantity = minOrder
	}

	netUnit := money.Zero
	if len(entries) > 0 {
		netUnit = product.ResolveUnitPrice(entries[0], report)
	} else if len(product.Variants) > 0 {
		netUnit = product.Variants[0].Price
	}

	appliedPercent := money.Zero
	discountedNetUnit := netUnit
	// The tier is resolved by the real quantity, not the clamped one: being
	// billed for the minimum does not unlock its discount band.
	if tier, _, ok := product.DiscountTiers.Resolve(totalQuantity); ok && tier.Percent != nil {
		discountedNetUnit = netUnit.Mul(money.Percent(*tier.Percent))
		appliedPercent = *tier.Percent
	}

	effQty := decimal.NewFromInt(int64(effectiveQuantity))
	userUnit := customer.UnitPrice(discountedNetUnit)
	total := userUnit.Mul(effQty)

	for _, name := range []string{AddOnLayoutService, AddOnDataCheck} {
		addOn, ok := cfg.AddOn(name)
		if !ok || addOn.Price.LessThanOrEqual(money.Zero) {
			continue
		}
		addOnQty := addOn.Quantity
		if addOnQty <= 0 {
			addOnQty = 1
		}
		total = total.Add(customer.TotalPrice(addOn.Price, addOnQty))
	}

	savings := customer.UnitPrice(netUnit).Mul(effQty).Sub(userUnit.Mul(effQty))
	if savings.IsNegative() {
		savings = money.Zero
	}

	return AllInclusiveQuote{
		TotalPrice:                money.String(money.Round(total)),
		PricePerPiece:             money.String(userUnit),
		AppliedDiscountPercentage: money.String(appliedPercent),
		TotalQuantity:             totalQuantity,
		ProductDiscount:           money.String(money.Round(savings)),
	}
}
