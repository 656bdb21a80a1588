package api

import (
	"net/http"

	"github.com/example/storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

type orderItemRequest struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items"`
	ShippingAddress *order.ShippingAddress `json:"shippingAddress"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
}

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	items := make([]order.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.LineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			Image:     it.Image,
		})
	}

	o, err := h.orders.Create(r.Context(), claims.UserID, order.CreateInput{
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		TotalAmount:     req.TotalAmount,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Order created successfully", o)
}

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *Handlers) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	orders, err := h.orders.ListForUser(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	claims, err := currentUser(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	o, err := h.orders.GetByID(r.Context(), r.PathValue("id"), claims.UserID, claims.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Order retrieved successfully", o)
}

func (h *Handlers) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ApprovePayment(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Payment approved", o)
}

func (h *Handlers) DeclineOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	o, err := h.orders.DeclinePayment(r.Context(), r.PathValue("id"), req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Payment declined", o)
}
