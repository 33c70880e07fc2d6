// Package repo holds the hand-written pgx repositories backing catalog,
// cart, order, and event storage.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drucklab/backend-shop/internal/money"
	"github.com/drucklab/backend-shop/internal/pricing"
)

// ErrNotFound indicates the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Products reads catalog products in their pricing-relevant shape.
type Products struct {
	Pool *pgxpool.Pool
}

// ProductSummary is the listing view of a product.
type ProductSummary struct {
	ID           string `json:"id"`
	Handle       string `json:"handle"`
	Title        string `json:"title"`
	AllInclusive bool   `json:"allInclusive"`
}

// List returns all products ordered by handle.
func (r Products) List(ctx context.Context) ([]ProductSummary, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, handle, title, all_inclusive
		FROM products
		ORDER BY handle`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []ProductSummary
	for rows.Next() {
		var p ProductSummary
		if err := rows.Scan(&p.ID, &p.Handle, &p.Title, &p.AllInclusive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByHandle assembles the full pricing view of one product: variants with
// their selected options, the percentage discount table, and the per-side
// decoration sub-products with their price tiers and positional variant ids.
func (r Products) GetByHandle(ctx context.Context, handle string) (pricing.Product, error) {
	var (
		product   pricing.Product
		tiersJSON []byte
	)
	err := r.Pool.QueryRow(ctx, `
		SELECT id, handle, title, sub_variant, all_inclusive,
		       decoration_mode, min_order_quantity, min_order_value, discount_tiers
		FROM products
		WHERE handle = $1`, handle).Scan(
		&product.ID, &product.Handle, &product.Title, &product.SubVariant,
		&product.AllInclusive, &product.DecorationMode,
		&product.MinOrderQuantity, &product.MinOrderValue, &tiersJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.Product{}, ErrNotFound
		}
		return pricing.Product{}, fmt.Errorf("get product %s: %w", handle, err)
	}
	if len(tiersJSON) > 0 {
		if err := json.Unmarshal(tiersJSON, &product.DiscountTiers); err != nil {
			return pricing.Product{}, fmt.Errorf("decode discount tiers: %w", err)
		}
	}

	if product.Variants, err = r.variants(ctx, product.ID); err != nil {
		return pricing.Product{}, err
	}
	if product.Decorations, err = r.decorations(ctx, product.ID); err != nil {
		return pricing.Product{}, err
	}
	return product, nil
}

func (r Products) variants(ctx context.Context, productID string) ([]pricing.CatalogVariant, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT id, options, price::text
		FROM product_variants
		WHERE product_id = $1
		ORDER BY position, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var out []pricing.CatalogVariant
	for rows.Next() {
		var (
			variant     pricing.CatalogVariant
			optionsJSON []byte
			price       string
		)
		if err := rows.Scan(&variant.ID, &optionsJSON, &price); err != nil {
			return nil, err
		}
		if len(optionsJSON) > 0 {
			if err := json.Unmarshal(optionsJSON, &variant.Options); err != nil {
				return nil, fmt.Errorf("decode variant options: %w", err)
			}
		}
		variant.Price = money.Parse(price)
		out = append(out, variant)
	}
	return out, rows.Err()
}

func (r Products) decorations(ctx context.Context, productID string) (map[pricing.Side]pricing.DecorationProduct, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT side, title, variant_ids, tiers
		FROM decorations
		WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("list decorations: %w", err)
	}
	defer rows.Close()

	out := make(map[pricing.Side]pricing.DecorationProduct)
	for rows.Next() {
		var (
			side      string
			deco      pricing.DecorationProduct
			tiersJSON []byte
		)
		if err := rows.Scan(&side, &deco.Title, &deco.VariantIDs, &tiersJSON); err != nil {
			return nil, err
		}
		if len(tiersJSON) > 0 {
			if err := json.Unmarshal(tiersJSON, &deco.Tiers); err != nil {
				return nil, fmt.Errorf("decode decoration tiers: %w", err)
			}
		}
		out[pricing.Side(side)] = deco
	}
	return out, rows.Err()
}
