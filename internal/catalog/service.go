package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/drucklab/backend-shop/internal/common"
	"github.com/drucklab/backend-shop/internal/pricing"
	"github.com/drucklab/backend-shop/internal/repo"
)

type productProvider interface {
	List(ctx context.Context) ([]repo.ProductSummary, error)
	GetByHandle(ctx context.Context, handle string) (pricing.Product, error)
}

// Service orchestrates product reads and caching. The detail payload is the
// pricing view of the product, so the quote and cart services reuse it to
// load catalog state.
type Service struct {
	products productProvider
	cache    *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Products productProvider
	Cache    *Cache
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Products == nil {
		return nil, errors.New("catalog: products provider is required")
	}
	return &Service{products: cfg.Products, cache: cfg.Cache}, nil
}

// ListProducts returns the product listing.
func (s *Service) ListProducts(ctx context.Context) ([]repo.ProductSummary, error) {
	const key = "catalog:products:list"
	if s.cache != nil {
		var cached []repo.ProductSummary
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	items, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, items)
	}
	return items, nil
}

// GetProduct returns the full pricing view of one product by handle.
func (s *Service) GetProduct(ctx context.Context, handle string) (pricing.Product, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return pricing.Product{}, &common.AppError{
			Code:       "BAD_REQUEST",
			Message:    "handle is required",
			HTTPStatus: http.StatusBadRequest,
		}
	}
	key := detailCacheKey(handle)
	if s.cache != nil {
		var cached pricing.Product
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			return cached, nil
		}
	}
	product, err := s.products.GetByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return pricing.Product{}, &common.AppError{
				Code:       "NOT_FOUND",
				Message:    "product not found",
				HTTPStatus: http.StatusNotFound,
				Err:        err,
			}
		}
		return pricing.Product{}, fmt.Errorf("get product %s: %w", handle, err)
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, product)
	}
	return product, nil
}

func detailCacheKey(handle string) string {
	return "catalog:products:detail:" + handle
}
