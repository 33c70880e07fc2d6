package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/drucklab/backend-shop/internal/money"
)

// Option is one name/value pair of a catalog variant's selected options,
// e.g. {Größe: "L"} or {Farbe: "rot"}.
type Option struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CatalogVariant is one purchasable variant of a catalog product.
type CatalogVariant struct {
	ID      string          `json:"id"`
	Options []Option        `json:"options"`
	Price   decimal.Decimal `json:"price"`
}

// Product is the pricing-relevant view of a catalog product.
type Product struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
	// SubVariant products (e.g. pens) are matched on size AND color;
	// simple products on size only.
	SubVariant bool `json:"subVariant"`
	// AllInclusive products carry a flat per-piece price that already
	// bundles decoration.
	AllInclusive     bool                       `json:"allInclusive"`
	Variants         []CatalogVariant           `json:"variants"`
	DiscountTiers    Table                      `json:"discountTiers"`
	Decorations      map[Side]DecorationProduct `json:"decorations"`
	DecorationMode   DecorationMode             `json:"decorationMode"`
	MinOrderQuantity int                        `json:"minOrderQuantity"`
	MinOrderValue    int                        `json:"minOrderValue"`
}

var (
	sizeOptionNames  = []string{"größe", "groesse", "size"}
	colorOptionNames = []string{"farbe", "color"}
)

func optionValue(options []Option, names []string) (string, bool) {
	for _, opt := range options {
		name := strings.ToLower(strings.TrimSpace(opt.Name))
		for _, candidate := range names {
			if name == candidate {
				return opt.Value, true
			}
		}
	}
	return "", false
}

// MatchVariant finds the catalog variant for a configuration entry. For
// sub-variant products both the size and color option must match; otherwise
// the size option alone decides, even when the entry carries a color.
func (p Product) MatchVariant(entry VariantEntry) (CatalogVariant, bool) {
	for _, variant := range p.Variants {
		size, hasSize := optionValue(variant.Options, sizeOptionNames)
		if !hasSize || size != entry.Size {
			continue
		}
		if p.SubVariant {
			color, hasColor := optionValue(variant.Options, colorOptionNames)
			if !hasColor || color != entry.Color {
				continue
			}
		}
		return variant, true
	}
	return CatalogVariant{}, false
}

// ResolveUnitPrice returns the matched catalog variant's net unit price. A
// missing match prices the entry at zero and reports an anomaly; the quote
// continues rather than failing checkout over one unmatched row.
func (p Product) ResolveUnitPrice(entry VariantEntry, report AnomalySink) decimal.Decimal {
	variant, ok := p.MatchVariant(entry)
	if !ok {
		report.report(AnomalyMissingCatalogMatch, entry.Size, "no catalog variant for size "+entry.Size+" color "+entry.Color)
		return money.Zero
	}
	return variant.Price
}
