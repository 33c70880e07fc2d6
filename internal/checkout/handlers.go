package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/drucklab/backend-shop/internal/common"
)

// Handler exposes the checkout endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

// Request is the payload for POST /api/v1/checkout.
type Request struct {
	CartID string `json:"cartId" validate:"required,uuid4"`
	Email  string `json:"email" validate:"required,email"`
}

// PlaceOrder turns the cart into an order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "cartId and a valid email are required", nil)
			return
		}
	}
	cartID, err := uuid.Parse(req.CartID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}

	order, lines, err := h.Svc.PlaceOrder(r.Context(), cartID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrCartNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
		case errors.Is(err, ErrCartEmpty):
			common.JSONError(w, http.StatusUnprocessableEntity, "CART_EMPTY", "cart has no items", nil)
		default:
			common.WriteError(w, err)
		}
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"order": order,
			"lines": lines,
		},
	})
}
