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
)

// Order is a placed order with its normalized lines.
type Order struct {
	ID         uuid.UUID `json:"id"`
	CartID     uuid.UUID `json:"cartId"`
	Email      string    `json:"email"`
	TotalPrice string    `json:"totalPrice"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LineAttribute is one descriptive key/value pair stored with a line.
type LineAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OrderLine is one normalized line as stored with the order.
type OrderLine struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"orderId"`
	VariantID  string          `json:"variantId"`
	Quantity   int             `json:"quantity"`
	Attributes []LineAttribute `json:"attributes"`
	Position   int             `json:"position"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
)

// Orders persists orders and their lines.
type Orders struct {
	Pool *pgxpool.Pool
}

// Create inserts the order and all of its lines inside the given transaction.
// Line positions follow the slice order so that the stored order matches the
// normalized output.
func (r Orders) Create(ctx context.Context, tx pgx.Tx, order Order, lines []OrderLine) (Order, error) {
	order.ID = uuid.New()
	order.Status = OrderStatusPending
	err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, cart_id, email, total_price, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		order.ID, order.CartID, order.Email, order.TotalPrice, order.Currency, order.Status,
	).Scan(&order.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}

	for i, line := range lines {
		attrJSON, err := json.Marshal(line.Attributes)
		if err != nil {
			return Order{}, fmt.Errorf("encode line attributes: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, variant_id, quantity, attributes, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(), order.ID, line.VariantID, line.Quantity, attrJSON, i)
		if err != nil {
			return Order{}, fmt.Errorf("create order line: %w", err)
		}
	}
	return order, nil
}

// Get loads an order by id.
func (r Orders) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	var order Order
	err := r.Pool.QueryRow(ctx, `
		SELECT id, cart_id, email, total_price, currency, status, created_at
		FROM orders
		WHERE id = $1`, id,
	).Scan(&order.ID, &order.CartID, &order.Email, &order.TotalPrice,
		&order.Currency, &order.Status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// Lines returns the order's lines in stored position order.
func (r Orders) Lines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, order_id, variant_id, quantity, attributes, position
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var (
			line     OrderLine
			attrJSON []byte
		)
		if err := rows.Scan(&line.ID, &line.OrderID, &line.VariantID,
			&line.Quantity, &attrJSON, &line.Position); err != nil {
			return nil, err
		}
		if len(attrJSON) > 0 {
			if err := json.Unmarshal(attrJSON, &line.Attributes); err != nil {
				return nil, fmt.Errorf("decode line attributes: %w", err)
			}
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

// MarkConfirmed flips the order into the confirmed state once the
// confirmation mail went out.
func (r Orders) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
		id, OrderStatusConfirmed, OrderStatusPending)
	if err != nil {
		return fmt.Errorf("confirm order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
