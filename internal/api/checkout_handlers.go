package api

import (
	"net/http"

	"github.com/example/storefront/internal/checkout"
	"github.com/shopspring/decimal"
)

type checkoutProductRequest struct {
	ID       string          `json:"id"`
	LegacyID string          `json:"_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (h *Handlers) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req struct {
		Products    []checkoutProductRequest `json:"products"`
		TotalAmount decimal.Decimal          `json:"totalAmount"`
		CouponCode  string                   `json:"couponCode"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	products := make([]checkout.Product, 0, len(req.Products))
	for _, p := range req.Products {
		id := p.ID
		if id == "" {
			id = p.LegacyID
		}
		products = append(products, checkout.Product{ID: id, Quantity: p.Quantity, Price: p.Price})
	}

	session, err := h.checkout.CreateSession(r.Context(),
		checkout.Customer{UserID: claims.UserID, Email: claims.Email},
		checkout.SessionInput{Products: products, TotalAmount: req.TotalAmount, CouponCode: req.CouponCode},
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Checkout session created", session)
}

// CheckoutSuccess takes the reference from the query string, falling back
// to a JSON body.
func (h *Handlers) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" && r.ContentLength != 0 {
		var req struct {
			Reference string `json:"reference"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			h.fail(w, r, err)
			return
		}
		reference = req.Reference
	}

	o, err := h.checkout.Confirm(r.Context(), reference)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Payment successful, order created", o)
}
