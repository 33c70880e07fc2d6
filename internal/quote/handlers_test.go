package quote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drucklab/backend-shop/internal/identity"
	"github.com/drucklab/backend-shop/internal/pricing"
)

type stubLoader struct {
	product pricing.Product
}

func (s stubLoader) GetProduct(context.Context, string) (pricing.Product, error) {
	return s.product, nil
}

func shirt() pricing.Product {
	return pricing.Product{
		ID:     "p1",
		Handle: "shirt-classic",
		Variants: []pricing.CatalogVariant{
			{
				ID:      "v-l",
				Options: []pricing.Option{{Name: "Größe", Value: "L"}},
				Price:   decimal.RequireFromString("12.00"),
			},
		},
	}
}

func postQuote(t *testing.T, h *Handler, body string, customer *pricing.CustomerContext) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quote", strings.NewReader(body))
	if customer != nil {
		req = req.WithContext(identity.WithCustomer(req.Context(), *customer))
	}
	rec := httptest.NewRecorder()
	h.Quote(rec, req)
	return rec
}

func TestQuoteEndpoint(t *testing.T) {
	vat := decimal.RequireFromString("0.19")
	svc, err := NewService(ServiceConfig{Products: stubLoader{product: shirt()}})
	require.NoError(t, err)
	h := NewHandler(svc, nil, vat)

	body := `{
		"productHandle": "shirt-classic",
		"configuration": {
			"variants": {
				"L": {"kind": "size", "size": "L", "quantity": 10}
			}
		}
	}`
	rec := postQuote(t, h, body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, ModelTiered, payload.Data.Model)
	require.NotNil(t, payload.Data.Quote)
	// consumer default: 12.00 net becomes 14.28 gross
	require.Equal(t, "14.28", payload.Data.Quote.PricePerPiece)
	require.Equal(t, "142.80", payload.Data.Quote.TotalPrice)
}

func TestQuoteEndpointBusinessCustomer(t *testing.T) {
	vat := decimal.RequireFromString("0.19")
	svc, err := NewService(ServiceConfig{Products: stubLoader{product: shirt()}})
	require.NoError(t, err)
	h := NewHandler(svc, nil, vat)

	customer := pricing.CustomerContext{Class: pricing.ClassBusiness, VATRate: vat}
	body := `{
		"productHandle": "shirt-classic",
		"configuration": {
			"variants": {
				"L": {"kind": "size", "size": "L", "quantity": 10}
			}
		}
	}`
	rec := postQuote(t, h, body, &customer)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "12.00", payload.Data.Quote.PricePerPiece)
	require.Equal(t, "120.00", payload.Data.Quote.TotalPrice)
}

func TestQuoteEndpointRejectsMissingHandle(t *testing.T) {
	svc, err := NewService(ServiceConfig{Products: stubLoader{product: shirt()}})
	require.NoError(t, err)
	h := NewHandler(svc, nil, decimal.RequireFromString("0.19"))

	rec := postQuote(t, h, `{"configuration": {}}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postQuote(t, h, `not json`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteEndpointAllInclusive(t *testing.T) {
	product := shirt()
	product.AllInclusive = true
	product.MinOrderQuantity = 50
	svc, err := NewService(ServiceConfig{Products: stubLoader{product: product}})
	require.NoError(t, err)
	h := NewHandler(svc, nil, decimal.RequireFromString("0.19"))

	customer := pricing.CustomerContext{Class: pricing.ClassBusiness, VATRate: decimal.RequireFromString("0.19")}
	body := `{
		"productHandle": "shirt-classic",
		"configuration": {
			"variants": {
				"L": {"kind": "size", "size": "L", "quantity": 30}
			}
		}
	}`
	rec := postQuote(t, h, body, &customer)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, ModelAllInclusive, payload.Data.Model)
	require.NotNil(t, payload.Data.AllInclusive)
	// below the minimum of 50, the order is billed at 50 pieces
	require.Equal(t, "600.00", payload.Data.AllInclusive.TotalPrice)
	require.Equal(t, 30, payload.Data.AllInclusive.TotalQuantity)
}
