package api

import (
	"net/http"

	"github.com/example/storefront/internal/apperr"
)

var errCartForbidden = apperr.Forbidden("not allowed to view this cart")

// GetCart serves both /cart and /cart/{userId}. Only the owner or an admin
// may read a cart.
func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	userID := r.PathValue("userId")
	if userID == "" {
		userID = claims.UserID
	}
	if userID != claims.UserID && !claims.Role.IsAdmin() {
		h.fail(w, r, errCartForbidden)
		return
	}

	view, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Cart retrieved successfully", view)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.carts.AddItem(r.Context(), claims.UserID, req.ProductID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Product added to cart", view)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	view, err := h.carts.RemoveItems(r.Context(), claims.UserID, req.ProductIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Products removed from cart", view)
}

func (h *Handlers) UpdateCartQuantity(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Quantity == nil {
		h.fail(w, r, errInvalidBody.WithField("quantity", "is required"))
		return
	}

	view, err := h.carts.UpdateQuantity(r.Context(), claims.UserID, r.PathValue("id"), *req.Quantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Cart updated", view)
}
