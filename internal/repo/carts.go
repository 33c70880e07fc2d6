package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drucklab/backend-shop/internal/pricing"
)

// Cart is one anonymous shopping cart.
type Cart struct {
	ID        uuid.UUID `json:"id"`
	AnonID    string    `json:"anonId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartItem is one finalized configurator line. The pricing fields are frozen
// at add-to-cart time; the live configuration is kept for checkout-line
// normalization.
type CartItem struct {
	ID              uuid.UUID                     `json:"id"`
	CartID          uuid.UUID                     `json:"cartId"`
	ProductHandle   string                        `json:"productHandle"`
	Configuration   pricing.PurchaseConfiguration `json:"configuration"`
	TotalQuantity   int                           `json:"totalQuantity"`
	TotalPrice      string                        `json:"totalPrice"`
	PricePerPiece   string                        `json:"pricePerPiece"`
	VeredelungTotal string                        `json:"veredelungTotal"`
	CreatedAt       time.Time                     `json:"createdAt"`
}

// Carts stores carts and their frozen line items.
type Carts struct {
	Pool *pgxpool.Pool
}

// Create inserts a cart for the given anonymous id.
func (r Carts) Create(ctx context.Context, anonID string, ttl time.Duration) (Cart, error) {
	cart := Cart{ID: uuid.New(), AnonID: anonID}
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO carts (id, anon_id, expires_at)
		VALUES ($1, $2, now() + $3)
		RETURNING expires_at, created_at`,
		cart.ID, anonID, ttl).Scan(&cart.ExpiresAt, &cart.CreatedAt)
	if err != nil {
		return Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return cart, nil
}

// GetByAnon loads the newest unexpired cart for an anonymous id.
func (r Carts) GetByAnon(ctx context.Context, anonID string) (Cart, error) {
	var cart Cart
	err := r.Pool.QueryRow(ctx, `
		SELECT id, anon_id, expires_at, created_at
		FROM carts
		WHERE anon_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT 1`, anonID).Scan(&cart.ID, &cart.AnonID, &cart.ExpiresAt, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("get cart by anon id: %w", err)
	}
	return cart, nil
}

// Get loads a cart by id.
func (r Carts) Get(ctx context.Context, id uuid.UUID) (Cart, error) {
	var cart Cart
	err := r.Pool.QueryRow(ctx, `
		SELECT id, anon_id, expires_at, created_at
		FROM carts
		WHERE id = $1`, id).Scan(&cart.ID, &cart.AnonID, &cart.ExpiresAt, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// Touch extends the cart's expiry.
func (r Carts) Touch(ctx context.Context, id uuid.UUID, ttl time.Duration) error {
	_, err := r.Pool.Exec(ctx, `UPDATE carts SET expires_at = now() + $2 WHERE id = $1`, id, ttl)
	return err
}

// AddItem inserts a frozen cart line.
func (r Carts) AddItem(ctx context.Context, item CartItem) (CartItem, error) {
	item.ID = uuid.New()
	cfgJSON, err := json.Marshal(item.Configuration)
	if err != nil {
		return CartItem{}, fmt.Errorf("encode configuration: %w", err)
	}
	err = r.Pool.QueryRow(ctx, `
		INSERT INTO cart_items
			(id, cart_id, product_handle, configuration, total_quantity,
			 total_price, price_per_piece, veredelung_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		item.ID, item.CartID, item.ProductHandle, cfgJSON, item.TotalQuantity,
		item.TotalPrice, item.PricePerPiece, item.VeredelungTotal,
	).Scan(&item.CreatedAt)
	if err != nil {
		return CartItem{}, fmt.Errorf("add cart item: %w", err)
	}
	return item, nil
}

// ListItems returns the cart's lines in insertion order.
func (r Carts) ListItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, cart_id, product_handle, configuration, total_quantity,
		       total_price, price_per_piece, veredelung_total, created_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var out []CartItem
	for rows.Next() {
		var (
			item    CartItem
			cfgJSON []byte
		)
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductHandle, &cfgJSON,
			&item.TotalQuantity, &item.TotalPrice, &item.PricePerPiece,
			&item.VeredelungTotal, &item.CreatedAt); err != nil {
			return nil, err
		}
		if len(cfgJSON) > 0 {
			if err := json.Unmarshal(cfgJSON, &item.Configuration); err != nil {
				return nil, fmt.Errorf("decode configuration: %w", err)
			}
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// DeleteItem removes one line from the cart.
func (r Carts) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes all lines of a cart after a successful checkout.
func (r Carts) Clear(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}
