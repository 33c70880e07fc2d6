package pricing

// Anomaly kinds reported by the pricing engine. The engine itself never
// fails on data-quality issues; it degrades to a safe zero and reports the
// condition through the sink so silent mispricing stays observable.
const (
	AnomalyMissingCatalogMatch  = "missing_catalog_match"
	AnomalyMissingDiscountTier  = "missing_discount_tier"
	AnomalyMalformedDecorations = "malformed_decoration_catalog"
)

// Anomaly describes a non-fatal data-quality issue encountered while pricing.
type Anomaly struct {
	Kind   string
	Key    string
	Detail string
}

// AnomalySink receives anomalies. A nil sink discards them.
type AnomalySink func(Anomaly)

func (s AnomalySink) report(kind, key, detail string) {
	if s == nil {
		return
	}
	s(Anomaly{Kind: kind, Key: key, Detail: detail})
}
