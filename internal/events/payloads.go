package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is the line item shape carried by order events.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// OrderPayload is published for OrderCreated and OrderMaterialized.
type OrderPayload struct {
	OrderID          string          `json:"order_id"`
	UserID           string          `json:"user_id"`
	Flow             string          `json:"flow"`
	Items            []OrderLine     `json:"items"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PaymentDecisionPayload is published for OrderPaymentApproved and
// OrderPaymentDeclined.
type PaymentDecisionPayload struct {
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Status  string    `json:"status"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

// CouponPayload is published for CouponDeactivated.
type CouponPayload struct {
	Code   string    `json:"code"`
	UserID string    `json:"user_id"`
	Cause  string    `json:"cause"`
	At     time.Time `json:"at"`
}
