package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/shopspring/decimal"
)

const AggregateType = "Order"

// Flow tags how an order came to exist.
type Flow string

const (
	// FlowManualApproval orders start pending and wait for an admin decision.
	FlowManualApproval Flow = "manual_approval"
	// FlowGatewayConfirmed orders are written after the gateway confirmed
	// the payment.
	FlowGatewayConfirmed Flow = "gateway_confirmed"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

const DefaultDeclineReason = "Payment not verified"

var (
	ErrOrderNotFound      = apperr.NotFound("order not found")
	ErrNoOrders           = apperr.NotFound("no orders found")
	ErrEmptyOrder         = apperr.Validation("order must have at least one item")
	ErrInvalidOrder       = apperr.Validation("invalid order")
	ErrInvalidTransition  = apperr.Conflict("invalid payment status transition")
	ErrDuplicateReference = apperr.Conflict("order already exists for this payment reference")
	ErrOrderForbidden     = apperr.Forbidden("not allowed to access this order")
)

// validTransitions lists the payment statuses reachable from each status.
// Re-applying the current decision is allowed so approve and decline are
// idempotent.
var validTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:  {PaymentApproved, PaymentRejected},
	PaymentApproved: {PaymentApproved},
	PaymentRejected: {PaymentRejected},
}

type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Image     string          `json:"image,omitempty"`
}

type ShippingAddress struct {
	Address     string `json:"address"`
	State       string `json:"state"`
	AccountName string `json:"accountName"`
}

type Order struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	Flow             Flow             `json:"flow"`
	Items            []LineItem       `json:"items"`
	ShippingAddress  *ShippingAddress `json:"shippingAddress,omitempty"`
	TotalAmount      decimal.Decimal  `json:"totalAmount"`
	PaymentStatus    PaymentStatus    `json:"paymentStatus"`
	OrderStatus      Status           `json:"orderStatus"`
	RejectionReason  string           `json:"rejectionReason,omitempty"`
	PaymentReference string           `json:"paymentReference,omitempty"`
	CouponCode       string           `json:"couponCode,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// CanTransitionTo checks if the payment status may move to target.
func (o *Order) CanTransitionTo(target PaymentStatus) bool {
	for _, s := range validTransitions[o.PaymentStatus] {
		if s == target {
			return true
		}
	}
	return false
}

func (o *Order) transitionError(target PaymentStatus) error {
	return ErrInvalidTransition.Wrap(fmt.Errorf("cannot move payment from %s to %s", o.PaymentStatus, target))
}

func validateItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}
	err := ErrInvalidOrder
	invalid := false
	for i, it := range items {
		if strings.TrimSpace(it.ProductID) == "" {
			err, invalid = err.WithField(fmt.Sprintf("items[%d].productId", i), "is required"), true
		}
		if it.Quantity <= 0 {
			err, invalid = err.WithField(fmt.Sprintf("items[%d].quantity", i), "must be positive"), true
		}
		if it.UnitPrice.IsNegative() {
			err, invalid = err.WithField(fmt.Sprintf("items[%d].price", i), "must not be negative"), true
		}
	}
	if invalid {
		return err
	}
	return nil
}

func validateAddress(a *ShippingAddress) error {
	if a == nil {
		return ErrInvalidOrder.WithField("shippingAddress", "is required")
	}
	err := ErrInvalidOrder
	invalid := false
	if strings.TrimSpace(a.Address) == "" {
		err, invalid = err.WithField("shippingAddress.address", "is required"), true
	}
	if strings.TrimSpace(a.State) == "" {
		err, invalid = err.WithField("shippingAddress.state", "is required"), true
	}
	if strings.TrimSpace(a.AccountName) == "" {
		err, invalid = err.WithField("shippingAddress.accountName", "is required"), true
	}
	if invalid {
		return err
	}
	return nil
}
