package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/drucklab/backend-shop/internal/common"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Products handles GET /api/v1/products.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	items, err := h.service.ListProducts(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// ProductDetail handles GET /api/v1/products/{handle}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "catalog service not configured", nil)
		return
	}
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}
