package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/drucklab/backend-shop/internal/pricing"
)

var (
	domainOnce sync.Once

	// QuotesTotal counts computed quotes by pricing model.
	QuotesTotal *prometheus.CounterVec
	// PricingAnomaliesTotal counts non-fatal pricing data-quality issues by kind.
	PricingAnomaliesTotal *prometheus.CounterVec
	// CheckoutLinesTotal counts normalized checkout line items emitted.
	CheckoutLinesTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers the domain collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_quotes_total",
			Help:      "Count of computed quotes by pricing model.",
		}, []string{"model"}))
		PricingAnomaliesTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_anomalies_total",
			Help:      "Count of pricing data-quality anomalies by kind.",
		}, []string{"kind"}))
		CheckoutLinesTotal = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_lines_total",
			Help:      "Count of normalized checkout line items.",
		}))
	})
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter) prometheus.Counter {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// AnomalySink returns a pricing sink that logs each anomaly as a structured
// warning and bumps the anomaly counter. Pricing stays non-throwing; this is
// how silent mispricing becomes visible in production.
func AnomalySink(logger zerolog.Logger) pricing.AnomalySink {
	return func(a pricing.Anomaly) {
		logger.Warn().
			Str("kind", a.Kind).
			Str("key", a.Key).
			Str("detail", a.Detail).
			Msg("pricing_anomaly")
		if PricingAnomaliesTotal != nil {
			PricingAnomaliesTotal.WithLabelValues(a.Kind).Inc()
		}
	}
}
