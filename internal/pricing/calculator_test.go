package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drucklab/backend-shop/internal/pricing"
)

func configWith(size string, qty int) pricing.PurchaseConfiguration {
	return pricing.PurchaseConfiguration{
		Variants: map[string]pricing.VariantEntry{
			size: {Kind: pricing.KindSize, Size: size, Quantity: qty},
		},
		Sides:          map[pricing.Side]pricing.SideConfig{},
		DecorationMode: pricing.PerSide,
	}
}

func TestQuoteNoDiscountTierMatches(t *testing.T) {
	// size L, quantity 10 at net 12.00; the discount table starts at 25
	product := shirtProduct()
	product.DiscountTiers = pricing.Table{{MinQuantity: 25, MaxQuantity: nil, Percent: decPtr("10")}}

	quote := pricing.ComputeQuote(product, configWith("L", 10), consumer(), nil)

	require.Equal(t, "14.28", quote.PricePerPiece)
	require.Equal(t, "142.80", quote.TotalPrice)
	require.False(t, quote.DiscountApplied)
	require.Equal(t, 10, quote.TotalQuantity)
}

func TestQuoteWithDiscountTier(t *testing.T) {
	// quantity 30 crosses the {min:25, 10%} tier: 12.00 -> 10.80 net,
	// consumer per piece 12.852 -> 12.85, total 385.50
	product := shirtProduct()
	product.DiscountTiers = pricing.Table{{MinQuantity: 25, MaxQuantity: nil, Percent: decPtr("10")}}

	quote := pricing.ComputeQuote(product, configWith("L", 30), consumer(), nil)

	require.Equal(t, "12.85", quote.PricePerPiece)
	require.Equal(t, "385.50", quote.TotalPrice)
	require.True(t, quote.DiscountApplied)
	require.Equal(t, "10.00", quote.AppliedDiscountPercentage)
}

func TestQuoteBusinessStaysNet(t *testing.T) {
	product := shirtProduct()
	quote := pricing.ComputeQuote(product, configWith("L", 10), business(), nil)
	require.Equal(t, "12.00", quote.PricePerPiece)
	require.Equal(t, "120.00", quote.TotalPrice)
}

func TestQuoteZeroQuantityIsZeroNotNaN(t *testing.T) {
	product := shirtProduct()
	quote := pricing.ComputeQuote(product, configWith("L", 0), consumer(), nil)
	require.Equal(t, "0.00", quote.PricePerPiece)
	require.Equal(t, "0.00", quote.TotalPrice)
	require.Equal(t, 0, quote.TotalQuantity)
}

func TestQuoteIdempotent(t *testing.T) {
	product := shirtProduct()
	product.DiscountTiers = pricing.Table{{MinQuantity: 25, Percent: decPtr("10")}}
	product.Decorations = decorationCatalog()

	cfg := configWith("L", 30)
	cfg.Sides[pricing.SideBack] = sideWithElements(2, "Slogan")

	first := pricing.ComputeQuote(product, cfg, consumer(), nil)
	second := pricing.ComputeQuote(product, cfg, consumer(), nil)
	require.Equal(t, first, second)
}

func TestQuoteDiscountMonotonicity(t *testing.T) {
	product := shirtProduct()
	product.DiscountTiers = pricing.Table{
		{MinQuantity: 10, MaxQuantity: intPtr(24), Percent: decPtr("5")},
		{MinQuantity: 25, MaxQuantity: intPtr(49), Percent: decPtr("10")},
		{MinQuantity: 50, MaxQuantity: nil, Percent: decPtr("15")},
	}

	previous := decimal.NewFromInt(1 << 30)
	for _, qty := range []int{1, 5, 10, 24, 25, 49, 50, 100, 500} {
		quote := pricing.ComputeQuote(product, configWith("L", qty), business(), nil)
		perPiece := decimal.RequireFromString(quote.PricePerPiece)
		require.True(t, perPiece.LessThanOrEqual(previous),
			"per piece price rose from %s to %s at quantity %d", previous, perPiece, qty)
		previous = perPiece
	}
}

func TestQuoteAddsDecorationPerPiece(t *testing.T) {
	product := shirtProduct()
	product.Decorations = decorationCatalog()

	cfg := configWith("L", 60)
	cfg.Sides[pricing.SideBack] = sideWithElements(1)

	quote := pricing.ComputeQuote(product, cfg, business(), nil)

	// net 12.00 + 1.80 decoration per piece
	require.Equal(t, "13.80", quote.PricePerPiece)
	require.Equal(t, "828.00", quote.TotalPrice)
	require.Equal(t, "108.00", quote.VeredelungTotal)
	require.Equal(t, "1.80", quote.VeredelungPerPiece[pricing.SideBack])

	entry, ok := quote.Patch["backVeredelung"]
	require.True(t, ok)
	require.Equal(t, "vd-2", entry.ID)
	require.Equal(t, 60, entry.Quantity)
}

func TestQuoteSkipsStandardSentinel(t *testing.T) {
	product := shirtProduct()
	cfg := configWith("L", 10)
	cfg.Variants[pricing.SizeSentinel] = pricing.VariantEntry{Kind: pricing.KindSize, Size: pricing.SizeSentinel, Quantity: 99}

	quote := pricing.ComputeQuote(product, cfg, business(), nil)
	require.Equal(t, 10, quote.TotalQuantity)
}

func TestQuoteUnmatchedVariantPricesAtZero(t *testing.T) {
	var anomalies []pricing.Anomaly
	sink := func(a pricing.Anomaly) { anomalies = append(anomalies, a) }

	product := shirtProduct()
	cfg := configWith("L", 10)
	cfg.Variants["XXL"] = pricing.VariantEntry{Kind: pricing.KindSize, Size: "XXL", Quantity: 5}

	quote := pricing.ComputeQuote(product, cfg, business(), sink)

	// 10 * 12.00 + 5 * 0.00 over 15 pieces
	require.Equal(t, 15, quote.TotalQuantity)
	require.Equal(t, "8.00", quote.PricePerPiece)
	require.NotEmpty(t, anomalies)
	require.Equal(t, pricing.AnomalyMissingCatalogMatch, anomalies[0].Kind)
}

func allInclusiveProduct() pricing.Product {
	product := shirtProduct()
	product.AllInclusive = true
	product.MinOrderQuantity = 50
	return product
}

func TestAllInclusiveMinOrderClamp(t *testing.T) {
	product := allInclusiveProduct()

	quote := pricing.ComputeAllInclusive(product, configWith("L", 30), business(), nil)
	// 30 pieces billed as 50
	require.Equal(t, "600.00", quote.TotalPrice)
	require.Equal(t, 30, quote.TotalQuantity)

	zero := pricing.ComputeAllInclusive(product, configWith("L", 0), business(), nil)
	require.Equal(t, "0.00", zero.TotalPrice)
	require.Equal(t, 0, zero.TotalQuantity)
}

func TestAllInclusiveDiscountUsesRealQuantity(t *testing.T) {
	product := allInclusiveProduct()
	product.DiscountTiers = pricing.Table{{MinQuantity: 40, Percent: decPtr("10")}}

	// real quantity 30 stays below the 40-piece tier even though the order
	// is billed at the 50-piece minimum
	quote := pricing.ComputeAllInclusive(product, configWith("L", 30), business(), nil)
	require.Equal(t, "12.00", quote.PricePerPiece)
	require.Equal(t, "0.00", quote.ProductDiscount)

	discounted := pricing.ComputeAllInclusive(product, configWith("L", 45), business(), nil)
	require.Equal(t, "10.80", discounted.PricePerPiece)
	// savings: (12.00 - 10.80) * 50
	require.Equal(t, "60.00", discounted.ProductDiscount)
	require.Equal(t, "540.00", discounted.TotalPrice)
}

func TestAllInclusiveAddsServices(t *testing.T) {
	product := allInclusiveProduct()
	cfg := configWith("L", 50)
	cfg.Variants[pricing.AddOnLayoutService] = pricing.VariantEntry{
		Kind: pricing.KindAddOn, Name: pricing.AddOnLayoutService, Price: decimal.RequireFromString("25.00"),
	}
	cfg.Variants[pricing.AddOnDataCheck] = pricing.VariantEntry{
		Kind: pricing.KindAddOn, Name: pricing.AddOnDataCheck, Quantity: 1, Price: decimal.RequireFromString("10.00"),
	}

	quote := pricing.ComputeAllInclusive(product, cfg, business(), nil)
	// 50 * 12.00 + 25.00 + 10.00
	require.Equal(t, "635.00", quote.TotalPrice)
}
