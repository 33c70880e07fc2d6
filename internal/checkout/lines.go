package checkout

import (
	"strings"

	"github.com/drucklab/backend-shop/internal/money"
	"github.com/drucklab/backend-shop/internal/pricing"
)

// Attribute is one descriptive key/value pair attached to a checkout line.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// LineItem is the normalized checkout payload for one catalog variant.
type LineItem struct {
	VariantID  string      `json:"variantId"`
	Quantity   int         `json:"quantity"`
	Attributes []Attribute `json:"attributes"`
}

// CartLine is one finalized configurator item awaiting checkout.
type CartLine struct {
	Product pricing.Product
	Config  pricing.PurchaseConfiguration
}

// NormalizeLines flattens the cart into checkout line items: real size
// variants first, then decoration charges, then add-on services. Entries
// without a catalog id or with non-positive quantity are skipped, and a
// variant id is never emitted twice; the first occurrence wins.
func NormalizeLines(cart []CartLine) []LineItem {
	lines := make([]LineItem, 0, len(cart))
	seen := make(map[string]struct{})

	emit := func(item LineItem) {
		if item.VariantID == "" || item.Quantity <= 0 {
			return
		}
		if _, dup := seen[item.VariantID]; dup {
			return
		}
		seen[item.VariantID] = struct{}{}
		lines = append(lines, item)
	}

	for _, line := range cart {
		for _, entry := range line.Config.SizeEntries() {
			emit(LineItem{VariantID: entry.ID, Quantity: entry.Quantity})
		}

		// All-inclusive products bundle decoration into the base line.
		if !line.Product.AllInclusive {
			for _, entry := range line.Config.DecorationEntries() {
				emit(LineItem{
					VariantID:  entry.ID,
					Quantity:   entry.Quantity,
					Attributes: decorationAttributes(entry, line.Config),
				})
			}
		}

		for _, name := range []string{pricing.AddOnDataCheck, pricing.AddOnLayoutService} {
			addOn, ok := line.Config.AddOn(name)
			if !ok || !addOn.Price.IsPositive() {
				continue
			}
			qty := addOn.Quantity
			if qty <= 0 {
				qty = 1
			}
			emit(LineItem{
				VariantID:  addOn.ID,
				Quantity:   qty,
				Attributes: addOnAttributes(name, addOn, line.Config),
			})
		}
	}
	return lines
}

func decorationAttributes(entry pricing.VariantEntry, cfg pricing.PurchaseConfiguration) []Attribute {
	attrs := []Attribute{
		{Key: "Preis pro Stück", Value: money.String(entry.Price)},
		{Key: "Seite", Value: entry.Side.Label()},
	}
	side := cfg.Sides[entry.Side]
	if side.FreePlacement {
		attrs = append(attrs, Attribute{Key: "Platzierung", Value: "Freie Platzierung"})
		if asset := side.AssetReference(); asset != "" {
			attrs = append(attrs, Attribute{Key: "Design", Value: asset})
		}
	} else {
		attrs = append(attrs, Attribute{Key: "Platzierung", Value: "Fixe Position"})
		if side.FixedPosition != "" {
			attrs = append(attrs, Attribute{Key: "Position", Value: side.FixedPosition})
		}
	}
	return attrs
}

func addOnAttributes(name string, entry pricing.VariantEntry, cfg pricing.PurchaseConfiguration) []Attribute {
	title := entry.Title
	if title == "" {
		title = name
	}
	attrs := []Attribute{
		{Key: "Titel", Value: title},
		{Key: "Preis", Value: money.String(entry.Price)},
	}
	if name == pricing.AddOnLayoutService {
		if len(cfg.LayoutUploads) > 0 {
			attrs = append(attrs, Attribute{Key: "Dateien", Value: strings.Join(cfg.LayoutUploads, ", ")})
		}
		if strings.TrimSpace(cfg.LayoutNotes) != "" {
			attrs = append(attrs, Attribute{Key: "Anweisungen", Value: cfg.LayoutNotes})
		}
	}
	return attrs
}
