// Package cart manages anonymous shopping carts. Adding an item freezes the
// quote computed from the finalized configuration; the cart never re-prices
// on read.
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/drucklab/backend-shop/internal/pricing"
	"github.com/drucklab/backend-shop/internal/quote"
	"github.com/drucklab/backend-shop/internal/repo"
)

// ErrNotFound indicates the requested cart or item could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrEmptyConfiguration is returned when the configuration carries no
// billable quantity.
var ErrEmptyConfiguration = errors.New("configuration has no quantity")

type cartStore interface {
	Create(ctx context.Context, anonID string, ttl time.Duration) (repo.Cart, error)
	Get(ctx context.Context, id uuid.UUID) (repo.Cart, error)
	GetByAnon(ctx context.Context, anonID string) (repo.Cart, error)
	Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error
	AddItem(ctx context.Context, item repo.CartItem) (repo.CartItem, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]repo.CartItem, error)
	DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error
}

type quoter interface {
	Price(ctx context.Context, handle string, cfg pricing.PurchaseConfiguration, customer pricing.CustomerContext) (quote.Result, error)
}

// View is the cart payload returned to the storefront.
type View struct {
	Cart  repo.Cart       `json:"cart"`
	Items []repo.CartItem `json:"items"`
}

// Service encapsulates cart operations.
type Service struct {
	Store  cartStore
	Quotes quoter
	TTL    time.Duration
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// EnsureCart loads the active cart for an anonymous id, creating one when
// none exists, and extends its expiry either way.
func (s *Service) EnsureCart(ctx context.Context, anonID string) (repo.Cart, error) {
	if s == nil || s.Store == nil {
		return repo.Cart{}, errors.New("cart service not configured")
	}
	if anonID == "" {
		return repo.Cart{}, errors.New("anonymous id is required")
	}
	cart, err := s.Store.GetByAnon(ctx, anonID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return s.Store.Create(ctx, anonID, s.ttl())
		}
		return repo.Cart{}, err
	}
	_ = s.Store.Touch(ctx, cart.ID, s.ttl())
	return cart, nil
}

// Get returns the cart with its frozen lines.
func (s *Service) Get(ctx context.Context, cartID uuid.UUID) (View, error) {
	cart, err := s.Store.Get(ctx, cartID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return View{}, ErrNotFound
		}
		return View{}, err
	}
	items, err := s.Store.ListItems(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	if items == nil {
		items = []repo.CartItem{}
	}
	return View{Cart: cart, Items: items}, nil
}

// AddItem re-prices the finalized configuration server-side and stores the
// result as a frozen line. Client-sent prices are never trusted.
func (s *Service) AddItem(ctx context.Context, cartID uuid.UUID, handle string, cfg pricing.PurchaseConfiguration, customer pricing.CustomerContext) (repo.CartItem, error) {
	if _, err := s.Store.Get(ctx, cartID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.CartItem{}, ErrNotFound
		}
		return repo.CartItem{}, err
	}

	result, err := s.Quotes.Price(ctx, handle, cfg, customer)
	if err != nil {
		return repo.CartItem{}, fmt.Errorf("price cart item: %w", err)
	}

	item := repo.CartItem{
		CartID:        cartID,
		ProductHandle: handle,
	}
	switch {
	case result.AllInclusive != nil:
		q := result.AllInclusive
		if q.TotalQuantity <= 0 {
			return repo.CartItem{}, ErrEmptyConfiguration
		}
		item.TotalQuantity = q.TotalQuantity
		item.TotalPrice = q.TotalPrice
		item.PricePerPiece = q.PricePerPiece
		item.VeredelungTotal = "0.00"
	case result.Quote != nil:
		q := result.Quote
		if q.TotalQuantity <= 0 {
			return repo.CartItem{}, ErrEmptyConfiguration
		}
		cfg.ApplyDecorationPatch(q.Patch)
		item.TotalQuantity = q.TotalQuantity
		item.TotalPrice = q.TotalPrice
		item.PricePerPiece = q.PricePerPiece
		item.VeredelungTotal = q.VeredelungTotal
	default:
		return repo.CartItem{}, errors.New("quote result carried no pricing model")
	}
	item.Configuration = cfg

	return s.Store.AddItem(ctx, item)
}

// RemoveItem deletes one line from the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	err := s.Store.DeleteItem(ctx, cartID, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
