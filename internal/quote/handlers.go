package quote

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/drucklab/backend-shop/internal/common"
	"github.com/drucklab/backend-shop/internal/identity"
	"github.com/drucklab/backend-shop/internal/pricing"
)

// Request is the configurator quote payload.
type Request struct {
	ProductHandle string                        `json:"productHandle" validate:"required"`
	Configuration pricing.PurchaseConfiguration `json:"configuration"`
}

// Handler exposes POST /api/v1/quote.
type Handler struct {
	service  *Service
	validate *validator.Validate
	vatRate  decimal.Decimal
}

// NewHandler constructs a Handler.
func NewHandler(service *Service, validate *validator.Validate, vatRate decimal.Decimal) *Handler {
	if validate == nil {
		validate = validator.New()
	}
	return &Handler{service: service, validate: validate, vatRate: vatRate}
}

// Quote prices the posted configuration for the requesting customer.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "productHandle is required", nil)
		return
	}

	customer := identity.CustomerFromContext(r.Context(), h.vatRate)
	result, err := h.service.Price(r.Context(), req.ProductHandle, req.Configuration, customer)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
