package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Wafflinyo/USALeague/internal/middleware"
	"github.com/Wafflinyo/USALeague/internal/service"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
	"github.com/Wafflinyo/USALeague/pkg/response"
)

// ShopHandler handles shop HTTP requests.
type ShopHandler struct {
	shop *service.ShopService
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(shop *service.ShopService) *ShopHandler {
	return &ShopHandler{shop: shop}
}

// Items handles GET /api/v1/shop/items
func (h *ShopHandler) Items(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.shop.ListItems(r.Context()))
}

// Purchase handles POST /api/v1/shop/purchase
func (h *ShopHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		ItemID string `json:"itemId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.InvalidInput("invalid JSON body"))
		return
	}

	result, err := h.shop.Purchase(r.Context(), accountID, req.ItemID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}
