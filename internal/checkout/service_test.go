package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drucklab/backend-shop/internal/events"
	"github.com/drucklab/backend-shop/internal/pricing"
	"github.com/drucklab/backend-shop/internal/repo"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error   { t.committed = true; return nil }
func (t *fakeTx) Rollback(context.Context) error { t.rolledBack = true; return nil }

type fakeDB struct {
	tx *fakeTx
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	db.tx = &fakeTx{}
	return db.tx, nil
}

type fakeCarts struct {
	cart    repo.Cart
	items   []repo.CartItem
	cleared bool
}

func (c *fakeCarts) Get(_ context.Context, id uuid.UUID) (repo.Cart, error) {
	if id != c.cart.ID {
		return repo.Cart{}, repo.ErrNotFound
	}
	return c.cart, nil
}

func (c *fakeCarts) ListItems(context.Context, uuid.UUID) ([]repo.CartItem, error) {
	return c.items, nil
}

func (c *fakeCarts) Clear(context.Context, pgx.Tx, uuid.UUID) error {
	c.cleared = true
	return nil
}

type fakeOrders struct {
	created *repo.Order
	lines   []repo.OrderLine
}

func (o *fakeOrders) Create(_ context.Context, _ pgx.Tx, order repo.Order, lines []repo.OrderLine) (repo.Order, error) {
	order.ID = uuid.New()
	order.Status = repo.OrderStatusPending
	o.created = &order
	o.lines = lines
	return order, nil
}

type fakeProducts struct {
	product pricing.Product
}

func (p fakeProducts) GetProduct(context.Context, string) (pricing.Product, error) {
	return p.product, nil
}

type fakeEventStore struct {
	topics []string
}

func (s *fakeEventStore) InsertTx(_ context.Context, _ pgx.Tx, topic string, _ []byte) error {
	s.topics = append(s.topics, topic)
	return nil
}

func frozenItem(cartID uuid.UUID) repo.CartItem {
	return repo.CartItem{
		ID:            uuid.New(),
		CartID:        cartID,
		ProductHandle: "shirt-classic",
		Configuration: pricing.PurchaseConfiguration{
			Variants: map[string]pricing.VariantEntry{
				"L": {Kind: pricing.KindSize, Size: "L", ID: "v-l", Quantity: 10},
			},
		},
		TotalQuantity:   10,
		TotalPrice:      "142.80",
		PricePerPiece:   "14.28",
		VeredelungTotal: "0.00",
	}
}

func testService(carts *fakeCarts, orders *fakeOrders, store *fakeEventStore) (*Service, *fakeDB) {
	db := &fakeDB{}
	svc := &Service{
		DB:       db,
		Carts:    carts,
		Orders:   orders,
		Products: fakeProducts{product: pricing.Product{Handle: "shirt-classic"}},
		Bus:      &events.Bus{Store: store},
		Currency: "EUR",
	}
	return svc, db
}

func TestPlaceOrder(t *testing.T) {
	cartID := uuid.New()
	carts := &fakeCarts{
		cart:  repo.Cart{ID: cartID, AnonID: "anon-1"},
		items: []repo.CartItem{frozenItem(cartID)},
	}
	orders := &fakeOrders{}
	store := &fakeEventStore{}
	svc, db := testService(carts, orders, store)

	order, lines, err := svc.PlaceOrder(context.Background(), cartID, "kunde@example.com")
	require.NoError(t, err)
	require.Equal(t, "142.80", order.TotalPrice)
	require.Equal(t, "EUR", order.Currency)
	require.Equal(t, repo.OrderStatusPending, order.Status)
	require.Len(t, lines, 1)
	require.Equal(t, "v-l", lines[0].VariantID)

	require.True(t, db.tx.committed)
	require.True(t, carts.cleared)
	require.Equal(t, []string{events.TopicOrderCreated}, store.topics)
}

func TestPlaceOrderSumsCartTotals(t *testing.T) {
	cartID := uuid.New()
	first := frozenItem(cartID)
	second := frozenItem(cartID)
	second.TotalPrice = "57.20"
	second.Configuration.Variants = map[string]pricing.VariantEntry{
		"M": {Kind: pricing.KindSize, Size: "M", ID: "v-m", Quantity: 4},
	}
	carts := &fakeCarts{
		cart:  repo.Cart{ID: cartID},
		items: []repo.CartItem{first, second},
	}
	orders := &fakeOrders{}
	svc, _ := testService(carts, orders, &fakeEventStore{})

	order, lines, err := svc.PlaceOrder(context.Background(), cartID, "kunde@example.com")
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("200.00").Equal(decimal.RequireFromString(order.TotalPrice)))
	require.Len(t, lines, 2)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	cartID := uuid.New()
	carts := &fakeCarts{cart: repo.Cart{ID: cartID}}
	svc, _ := testService(carts, &fakeOrders{}, &fakeEventStore{})

	_, _, err := svc.PlaceOrder(context.Background(), cartID, "kunde@example.com")
	require.ErrorIs(t, err, ErrCartEmpty)
}

func TestPlaceOrderUnknownCart(t *testing.T) {
	carts := &fakeCarts{cart: repo.Cart{ID: uuid.New()}}
	svc, _ := testService(carts, &fakeOrders{}, &fakeEventStore{})

	_, _, err := svc.PlaceOrder(context.Background(), uuid.New(), "kunde@example.com")
	require.ErrorIs(t, err, ErrCartNotFound)
}
