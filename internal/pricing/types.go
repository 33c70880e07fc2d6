// Package pricing implements the storefront's purchase-configuration
// pricing engine: quantity tiers, net/gross customer pricing, decoration
// (Veredelung) aggregation, and catalog variant matching.
//
// Everything in this package is a deterministic, side-effect-free function
// of its inputs. The engine is re-run on every configurator edit, so
// recomputing with identical inputs must yield identical outputs.
package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Side identifies a printable garment side.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// Label returns the human-readable German side label used on checkout lines.
func (s Side) Label() string {
	switch s {
	case SideFront:
		return "Vorderseite"
	case SideBack:
		return "Rückseite"
	default:
		return string(s)
	}
}

// DecorationKey returns the variants-map key carrying the side's decoration
// charge ("frontVeredelung" / "backVeredelung").
func (s Side) DecorationKey() string {
	return string(s) + "Veredelung"
}

// DecorationMode selects how decoration units are counted.
type DecorationMode string

const (
	// PerSide charges decoration once per side with any content.
	PerSide DecorationMode = "perSide"
	// PerElement charges decoration once per graphic or non-blank text.
	PerElement DecorationMode = "perElement"
)

// EntryKind discriminates variant entries, replacing the string-based
// special-casing of add-on names mixed into the size map.
type EntryKind string

const (
	KindSize       EntryKind = "size"
	KindAddOn      EntryKind = "addOn"
	KindDecoration EntryKind = "decoration"
)

// Well-known add-on names and the UI default-selection sentinel.
const (
	AddOnLayoutService = "layoutService"
	AddOnDataCheck     = "profiDatenCheck"
	SizeSentinel       = "Standard"
)

// VariantEntry is one entry of the purchase configuration's variants map:
// a real size/color selection, an add-on service, or a synthetic decoration
// charge emitted by the decoration aggregator.
type VariantEntry struct {
	Kind     EntryKind       `json:"kind"`
	Size     string          `json:"size,omitempty"`
	Color    string          `json:"color,omitempty"`
	Name     string          `json:"name,omitempty"`
	Side     Side            `json:"side,omitempty"`
	ID       string          `json:"id,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Title    string          `json:"title,omitempty"`
	Units    int             `json:"units,omitempty"`
}

// GraphicPlacement is one uploaded artwork placed on a side.
type GraphicPlacement struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Active   bool    `json:"active"`
}

// TextPlacement is one text layer placed on a side. Entries whose value is
// blank after trimming do not count as content.
type TextPlacement struct {
	ID         string  `json:"id"`
	Value      string  `json:"value"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Fill       string  `json:"fill"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Scale      float64 `json:"scale"`
	Rotation   float64 `json:"rotation"`
}

// SideConfig holds everything placed on one garment side. The legacy
// single-upload fields coexist with UploadedGraphics for configurations
// saved by older storefront versions; counting reconciles them by taking
// the maximum, never the sum.
type SideConfig struct {
	UploadedGraphics    []GraphicPlacement `json:"uploadedGraphics"`
	Texts               []TextPlacement    `json:"texts"`
	UploadedGraphic     string             `json:"uploadedGraphic,omitempty"`
	UploadedGraphicFile string             `json:"uploadedGraphicFile,omitempty"`
	FreePlacement       bool               `json:"freePlacement"`
	FixedPosition       string             `json:"fixedPosition,omitempty"`
}

func (s SideConfig) legacyUploadFlag() int {
	if s.UploadedGraphic != "" || s.UploadedGraphicFile != "" {
		return 1
	}
	return 0
}

func (s SideConfig) graphicCount() int {
	n := len(s.UploadedGraphics)
	if legacy := s.legacyUploadFlag(); legacy > n {
		return legacy
	}
	return n
}

func (s SideConfig) textCount() int {
	n := 0
	for _, t := range s.Texts {
		if strings.TrimSpace(t.Value) != "" {
			n++
		}
	}
	return n
}

// HasContent reports whether anything printable is placed on the side.
func (s SideConfig) HasContent() bool {
	return s.graphicCount() > 0 || s.textCount() > 0
}

// CountUnits returns how many decoration units the side contributes under
// the given charging mode: 0/1 for PerSide, graphics plus non-blank texts
// for PerElement.
func (s SideConfig) CountUnits(mode DecorationMode) int {
	if mode == PerSide {
		if s.HasContent() {
			return 1
		}
		return 0
	}
	return s.graphicCount() + s.textCount()
}

// AssetReference returns the design reference attached to checkout lines:
// the first uploaded graphic's source, falling back to the legacy fields.
func (s SideConfig) AssetReference() string {
	for _, g := range s.UploadedGraphics {
		if g.Source != "" {
			return g.Source
		}
	}
	if s.UploadedGraphic != "" {
		return s.UploadedGraphic
	}
	return s.UploadedGraphicFile
}

// PurchaseConfiguration is the mutable state of one configurator session.
// The engine treats every call as one consistent snapshot; concurrent edits
// are serialized by the caller.
type PurchaseConfiguration struct {
	Variants       map[string]VariantEntry `json:"variants"`
	Sides          map[Side]SideConfig     `json:"sides"`
	SelectedColor  string                  `json:"selectedColor,omitempty"`
	SelectedSize   string                  `json:"selectedSize,omitempty"`
	DecorationMode DecorationMode          `json:"decorationMode"`
	LayoutUploads  []string                `json:"layoutUploads,omitempty"`
	LayoutNotes    string                  `json:"layoutNotes,omitempty"`
}

// SizeEntries returns the real product selections in deterministic key
// order, with the "Standard" default-selection sentinel stripped. Only these
// entries participate in quantity summation and base pricing.
func (p PurchaseConfiguration) SizeEntries() []VariantEntry {
	keys := make([]string, 0, len(p.Variants))
	for key, entry := range p.Variants {
		if key == SizeSentinel || entry.Kind != KindSize {
			continue
		}
		if entry.Size == "" && entry.Color == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	entries := make([]VariantEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, p.Variants[key])
	}
	return entries
}

// TotalQuantity sums quantities over the real product selections.
func (p PurchaseConfiguration) TotalQuantity() int {
	total := 0
	for _, entry := range p.SizeEntries() {
		if entry.Quantity > 0 {
			total += entry.Quantity
		}
	}
	return total
}

// AddOn returns the named add-on entry if present.
func (p PurchaseConfiguration) AddOn(name string) (VariantEntry, bool) {
	entry, ok := p.Variants[name]
	if !ok || entry.Kind != KindAddOn {
		return VariantEntry{}, false
	}
	return entry, true
}

// DecorationEntries returns the synthetic decoration charges in front/back
// order.
func (p PurchaseConfiguration) DecorationEntries() []VariantEntry {
	entries := make([]VariantEntry, 0, 2)
	for _, side := range []Side{SideFront, SideBack} {
		if entry, ok := p.Variants[side.DecorationKey()]; ok && entry.Kind == KindDecoration {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ApplyDecorationPatch replaces the configuration's decoration entries with
// the freshly computed patch. Sides that dropped to zero units are removed
// rather than left stale.
func (p *PurchaseConfiguration) ApplyDecorationPatch(patch map[string]VariantEntry) {
	if p.Variants == nil {
		p.Variants = make(map[string]VariantEntry)
	}
	for _, side := range []Side{SideFront, SideBack} {
		delete(p.Variants, side.DecorationKey())
	}
	for key, entry := range patch {
		p.Variants[key] = entry
	}
}
