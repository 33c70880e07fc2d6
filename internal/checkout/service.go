package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/drucklab/backend-shop/internal/events"
	"github.com/drucklab/backend-shop/internal/money"
	"github.com/drucklab/backend-shop/internal/notify"
	"github.com/drucklab/backend-shop/internal/obs"
	"github.com/drucklab/backend-shop/internal/pricing"
	"github.com/drucklab/backend-shop/internal/repo"
)

// ErrCartNotFound indicates the cart does not exist.
var ErrCartNotFound = errors.New("cart not found")

// ErrCartEmpty indicates the cart has no lines to check out.
var ErrCartEmpty = errors.New("cart is empty")

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type cartReader interface {
	Get(ctx context.Context, id uuid.UUID) (repo.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]repo.CartItem, error)
	Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

type orderWriter interface {
	Create(ctx context.Context, tx pgx.Tx, order repo.Order, lines []repo.OrderLine) (repo.Order, error)
}

type productReader interface {
	GetProduct(ctx context.Context, handle string) (pricing.Product, error)
}

// Service turns a cart into an order: it normalizes the frozen
// configurations into checkout lines, persists the order atomically, and
// emits the order.created event.
type Service struct {
	DB       txBeginner
	Carts    cartReader
	Orders   orderWriter
	Products productReader
	Bus      *events.Bus
	Currency string
	Logger   zerolog.Logger
}

// PlaceOrder checks the cart out for the given email address.
func (s *Service) PlaceOrder(ctx context.Context, cartID uuid.UUID, email string) (repo.Order, []LineItem, error) {
	if s == nil || s.DB == nil {
		return repo.Order{}, nil, errors.New("checkout service not configured")
	}
	if _, err := s.Carts.Get(ctx, cartID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Order{}, nil, ErrCartNotFound
		}
		return repo.Order{}, nil, err
	}
	items, err := s.Carts.ListItems(ctx, cartID)
	if err != nil {
		return repo.Order{}, nil, err
	}
	if len(items) == 0 {
		return repo.Order{}, nil, ErrCartEmpty
	}

	cartLines := make([]CartLine, 0, len(items))
	total := money.Zero
	for _, item := range items {
		product, err := s.Products.GetProduct(ctx, item.ProductHandle)
		if err != nil {
			return repo.Order{}, nil, fmt.Errorf("load product %s: %w", item.ProductHandle, err)
		}
		cartLines = append(cartLines, CartLine{Product: product, Config: item.Configuration})
		total = total.Add(money.Parse(item.TotalPrice))
	}
	lines := NormalizeLines(cartLines)

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return repo.Order{}, nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	order, err := s.Orders.Create(ctx, tx, repo.Order{
		CartID:     cartID,
		Email:      email,
		TotalPrice: money.String(total),
		Currency:   s.Currency,
	}, storedLines(lines))
	if err != nil {
		return repo.Order{}, nil, err
	}
	if err := s.Carts.Clear(ctx, tx, cartID); err != nil {
		return repo.Order{}, nil, fmt.Errorf("clear cart: %w", err)
	}
	if s.Bus != nil {
		payload := notify.OrderConfirmationPayload{
			OrderID:    order.ID.String(),
			Email:      order.Email,
			TotalPrice: order.TotalPrice,
			Currency:   order.Currency,
		}
		ev, err := s.Bus.Emit(ctx, tx, events.TopicOrderCreated, payload)
		if err != nil {
			// A failed persist aborts the checkout; notifier failures only
			// cost the confirmation mail, not the order.
			if ev.Topic == "" {
				return repo.Order{}, nil, err
			}
			s.Logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("order event notifiers")
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return repo.Order{}, nil, fmt.Errorf("commit checkout: %w", err)
	}

	if obs.CheckoutLinesTotal != nil {
		obs.CheckoutLinesTotal.Add(float64(len(lines)))
	}
	return order, lines, nil
}

func storedLines(lines []LineItem) []repo.OrderLine {
	out := make([]repo.OrderLine, 0, len(lines))
	for _, line := range lines {
		attrs := make([]repo.LineAttribute, 0, len(line.Attributes))
		for _, attr := range line.Attributes {
			attrs = append(attrs, repo.LineAttribute{Key: attr.Key, Value: attr.Value})
		}
		out = append(out, repo.OrderLine{
			VariantID:  line.VariantID,
			Quantity:   line.Quantity,
			Attributes: attrs,
		})
	}
	return out
}
