package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/drucklab/backend-shop/internal/common"
	"github.com/drucklab/backend-shop/internal/identity"
	"github.com/drucklab/backend-shop/internal/pricing"
)

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	VATRate  decimal.Decimal
}

// AddItemRequest is the payload for POST /api/v1/carts/{id}/items.
type AddItemRequest struct {
	ProductHandle string                        `json:"productHandle" validate:"required"`
	Configuration pricing.PurchaseConfiguration `json:"configuration"`
}

// Create creates or returns a guest cart identifier.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	var payload struct {
		AnonID string `json:"anonId"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	anonID := strings.TrimSpace(payload.AnonID)
	if anonID == "" {
		anonID = uuid.NewString()
	}
	cart, err := h.Svc.EnsureCart(r.Context(), anonID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{
			"cartId": cart.ID.String(),
			"anonId": anonID,
		},
	})
}

// Get returns the cart with its frozen lines.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cartID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}
	view, err := h.Svc.Get(r.Context(), cartID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// AddItem prices the posted configuration and appends it as a frozen line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cartID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "productHandle is required", nil)
			return
		}
	} else if strings.TrimSpace(req.ProductHandle) == "" {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "productHandle is required", nil)
		return
	}

	customer := identity.CustomerFromContext(r.Context(), h.VATRate)
	item, err := h.Svc.AddItem(r.Context(), cartID, req.ProductHandle, req.Configuration, customer)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
		case errors.Is(err, ErrEmptyConfiguration):
			common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_CONFIGURATION", "configuration has no quantity", nil)
		default:
			common.WriteError(w, err)
		}
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": item})
}

// RemoveItem deletes one line from the cart.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	cartID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), cartID, itemID); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart item not found", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"removed": true}})
}
