// Package quote exposes the live configurator pricing endpoint. Every edit
// in the storefront configurator posts the current configuration here and
// renders the returned totals.
package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/drucklab/backend-shop/internal/obs"
	"github.com/drucklab/backend-shop/internal/pricing"
)

type productLoader interface {
	GetProduct(ctx context.Context, handle string) (pricing.Product, error)
}

// Result wraps whichever pricing model the product uses. Exactly one of the
// two quote fields is set.
type Result struct {
	Model        string                     `json:"model"`
	Quote        *pricing.Quote             `json:"quote,omitempty"`
	AllInclusive *pricing.AllInclusiveQuote `json:"allInclusive,omitempty"`
}

const (
	ModelTiered       = "tiered"
	ModelAllInclusive = "allInclusive"
)

// Service prices purchase configurations against catalog state.
type Service struct {
	products productLoader
	sink     pricing.AnomalySink
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Products productLoader
	Sink     pricing.AnomalySink
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Products == nil {
		return nil, errors.New("quote: product loader is required")
	}
	return &Service{products: cfg.Products, sink: cfg.Sink}, nil
}

// Price loads the product and runs the model matching its pricing setup.
func (s *Service) Price(ctx context.Context, handle string, cfg pricing.PurchaseConfiguration, customer pricing.CustomerContext) (Result, error) {
	product, err := s.products.GetProduct(ctx, handle)
	if err != nil {
		return Result{}, fmt.Errorf("load product for quote: %w", err)
	}

	if product.AllInclusive {
		q := pricing.ComputeAllInclusive(product, cfg, customer, s.sink)
		s.count(ModelAllInclusive)
		return Result{Model: ModelAllInclusive, AllInclusive: &q}, nil
	}
	q := pricing.ComputeQuote(product, cfg, customer, s.sink)
	s.count(ModelTiered)
	return Result{Model: ModelTiered, Quote: &q}, nil
}

func (s *Service) count(model string) {
	if obs.QuotesTotal != nil {
		obs.QuotesTotal.WithLabelValues(model).Inc()
	}
}
