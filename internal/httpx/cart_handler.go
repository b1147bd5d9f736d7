package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"smoothie-be/internal/cart"
	"smoothie-be/internal/utils"
)

// sessionID identifies the anonymous shopper. The storefront generates it
// once and sends it on every request.
func sessionID(r *http.Request) string {
	return r.Header.Get("X-Session-ID")
}

type addToCartReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteJSONError(w, "X-Session-ID header is required", http.StatusBadRequest)
		return
	}

	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		utils.WriteJSONError(w, "product_id is required", http.StatusBadRequest)
		return
	}

	item, err := h.Carts.AddToCart(r.Context(), sid, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrProductNotFound):
			utils.WriteJSONError(w, "product not found", http.StatusNotFound)
		case errors.Is(err, cart.ErrInsufficientStock):
			utils.WriteJSONError(w, "insufficient stock", http.StatusConflict)
		default:
			utils.WriteJSONError(w, "failed to add to cart", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteJSONError(w, "X-Session-ID header is required", http.StatusBadRequest)
		return
	}

	items, err := h.Carts.GetCart(r.Context(), sid)
	if err != nil {
		utils.WriteJSONError(w, "failed to load cart", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []cart.CartItem{}
	}

	utils.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) cancelCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		utils.WriteJSONError(w, "X-Session-ID header is required", http.StatusBadRequest)
		return
	}

	restored, err := h.Carts.Cancel(r.Context(), sid)
	if err != nil {
		utils.WriteJSONError(w, "failed to cancel cart", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int{"restored_items": restored})
}
