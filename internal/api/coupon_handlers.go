package api

import (
	"net/http"
	"time"

	"github.com/example/storefront/internal/domain/coupon"
	"github.com/shopspring/decimal"
)

// GetCoupon returns the caller's active coupon, or null data when there is
// none.
func (h *Handlers) GetCoupon(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.coupons.GetActive(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if c == nil {
		respondJSON(w, http.StatusOK, "No active coupon", nil)
		return
	}
	respondJSON(w, http.StatusOK, "Coupon retrieved successfully", c)
}

func (h *Handlers) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	v, err := h.coupons.Validate(r.Context(), claims.UserID, req.Code)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Coupon is valid", v)
}

// CreateCoupon issues a coupon. Without userId in the body the coupon is
// owned by the issuing admin.
func (h *Handlers) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req struct {
		Code               string          `json:"code"`
		DiscountPercentage decimal.Decimal `json:"discountPercentage"`
		ExpirationDate     time.Time       `json:"expirationDate"`
		UserID             string          `json:"userId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	owner := req.UserID
	if owner == "" {
		owner = claims.UserID
	}

	c, err := h.coupons.Create(r.Context(), claims.Role, coupon.CreateInput{
		Code:               req.Code,
		DiscountPercentage: req.DiscountPercentage,
		ExpirationDate:     req.ExpirationDate,
		OwnerUserID:        owner,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Coupon created successfully", c)
}
