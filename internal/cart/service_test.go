package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drucklab/backend-shop/internal/pricing"
	"github.com/drucklab/backend-shop/internal/quote"
	"github.com/drucklab/backend-shop/internal/repo"
)

type memStore struct {
	carts map[uuid.UUID]repo.Cart
	items map[uuid.UUID][]repo.CartItem
}

func newMemStore() *memStore {
	return &memStore{
		carts: make(map[uuid.UUID]repo.Cart),
		items: make(map[uuid.UUID][]repo.CartItem),
	}
}

func (m *memStore) Create(_ context.Context, anonID string, ttl time.Duration) (repo.Cart, error) {
	cart := repo.Cart{ID: uuid.New(), AnonID: anonID, ExpiresAt: time.Now().Add(ttl), CreatedAt: time.Now()}
	m.carts[cart.ID] = cart
	return cart, nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (repo.Cart, error) {
	cart, ok := m.carts[id]
	if !ok {
		return repo.Cart{}, repo.ErrNotFound
	}
	return cart, nil
}

func (m *memStore) GetByAnon(_ context.Context, anonID string) (repo.Cart, error) {
	for _, cart := range m.carts {
		if cart.AnonID == anonID {
			return cart, nil
		}
	}
	return repo.Cart{}, repo.ErrNotFound
}

func (m *memStore) Touch(context.Context, uuid.UUID, time.Duration) error { return nil }

func (m *memStore) AddItem(_ context.Context, item repo.CartItem) (repo.CartItem, error) {
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	m.items[item.CartID] = append(m.items[item.CartID], item)
	return item, nil
}

func (m *memStore) ListItems(_ context.Context, cartID uuid.UUID) ([]repo.CartItem, error) {
	return m.items[cartID], nil
}

func (m *memStore) DeleteItem(_ context.Context, cartID, itemID uuid.UUID) error {
	lines := m.items[cartID]
	for i, line := range lines {
		if line.ID == itemID {
			m.items[cartID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

type stubQuoter struct {
	result quote.Result
}

func (s stubQuoter) Price(context.Context, string, pricing.PurchaseConfiguration, pricing.CustomerContext) (quote.Result, error) {
	return s.result, nil
}

func tieredResult(qty int) quote.Result {
	return quote.Result{
		Model: quote.ModelTiered,
		Quote: &pricing.Quote{
			TotalPrice:      "142.80",
			PricePerPiece:   "14.28",
			VeredelungTotal: "0.00",
			TotalQuantity:   qty,
		},
	}
}

func consumer() pricing.CustomerContext {
	return pricing.CustomerContext{Class: pricing.ClassConsumer, VATRate: decimal.RequireFromString("0.19")}
}

func TestEnsureCartReusesActiveCart(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store, Quotes: stubQuoter{}}

	first, err := svc.EnsureCart(context.Background(), "anon-1")
	require.NoError(t, err)
	second, err := svc.EnsureCart(context.Background(), "anon-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	other, err := svc.EnsureCart(context.Background(), "anon-2")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestAddItemFreezesQuote(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store, Quotes: stubQuoter{result: tieredResult(10)}}

	cart, err := svc.EnsureCart(context.Background(), "anon-1")
	require.NoError(t, err)

	cfg := pricing.PurchaseConfiguration{
		Variants: map[string]pricing.VariantEntry{
			"L": {Kind: pricing.KindSize, Size: "L", Quantity: 10},
		},
	}
	item, err := svc.AddItem(context.Background(), cart.ID, "shirt-classic", cfg, consumer())
	require.NoError(t, err)
	require.Equal(t, "142.80", item.TotalPrice)
	require.Equal(t, "14.28", item.PricePerPiece)
	require.Equal(t, 10, item.TotalQuantity)

	view, err := svc.Get(context.Background(), cart.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
}

func TestAddItemRejectsEmptyConfiguration(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store, Quotes: stubQuoter{result: tieredResult(0)}}

	cart, err := svc.EnsureCart(context.Background(), "anon-1")
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), cart.ID, "shirt-classic", pricing.PurchaseConfiguration{}, consumer())
	require.ErrorIs(t, err, ErrEmptyConfiguration)
}

func TestAddItemUnknownCart(t *testing.T) {
	svc := &Service{Store: newMemStore(), Quotes: stubQuoter{result: tieredResult(10)}}
	_, err := svc.AddItem(context.Background(), uuid.New(), "shirt-classic", pricing.PurchaseConfiguration{}, consumer())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	store := newMemStore()
	svc := &Service{Store: store, Quotes: stubQuoter{result: tieredResult(10)}}

	cart, err := svc.EnsureCart(context.Background(), "anon-1")
	require.NoError(t, err)
	item, err := svc.AddItem(context.Background(), cart.ID, "shirt-classic", pricing.PurchaseConfiguration{}, consumer())
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(context.Background(), cart.ID, item.ID))
	require.ErrorIs(t, svc.RemoveItem(context.Background(), cart.ID, item.ID), ErrNotFound)
}
