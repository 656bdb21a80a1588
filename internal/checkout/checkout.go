// Package checkout runs the two-phase payment flow: open a hosted checkout
// session with the gateway, then turn a confirmed payment into an order.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/money"
	"github.com/example/storefront/internal/payment/paystack"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrNoProducts           = apperr.Validation("invalid or empty products array")
	ErrInvalidTotal         = apperr.Validation("total amount must be greater than zero")
	ErrReferenceRequired    = apperr.Validation("payment reference is required")
	ErrAlreadyProcessed     = apperr.Conflict("payment already processed")
	ErrPaymentNotSuccessful = apperr.Upstream("payment not successful", nil)
	ErrInvalidMetadata      = apperr.Upstream("payment metadata is invalid", nil)
)

// Gateway is the payment provider.
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.Session, error)
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
}

type Orders interface {
	ExistsForReference(ctx context.Context, reference string) (bool, error)
	Materialize(ctx context.Context, in order.MaterializeInput) (*order.Order, error)
}

type Coupons interface {
	Deactivate(ctx context.Context, userID, code string) error
}

type Carts interface {
	Clear(ctx context.Context, userID string) error
}

type Catalog interface {
	GetMany(ctx context.Context, ids []string) (map[string]*product.Product, error)
}

type Config struct {
	Currency    string
	CallbackURL string
}

type Service struct {
	gateway Gateway
	orders  Orders
	coupons Coupons
	carts   Carts
	catalog Catalog
	cfg     Config
	logger  *zap.Logger
}

func NewService(gateway Gateway, orders Orders, coupons Coupons, carts Carts, catalog Catalog, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		gateway: gateway,
		orders:  orders,
		coupons: coupons,
		carts:   carts,
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
	}
}

// Product is one line the client wants to pay for.
type Product struct {
	ID       string          `json:"id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Customer struct {
	UserID string
	Email  string
}

type SessionInput struct {
	Products    []Product       `json:"products"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CouponCode  string          `json:"couponCode"`
}

type Session struct {
	AuthorizationURL string          `json:"authorizationUrl"`
	Reference        string          `json:"reference"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
}

// metadata travels through the gateway and comes back on verification.
// Products is a JSON-encoded list.
type metadata struct {
	UserID     string `json:"userId"`
	Products   string `json:"products"`
	CouponCode string `json:"couponCode,omitempty"`
}

func (in SessionInput) validate() error {
	if len(in.Products) == 0 {
		return ErrNoProducts
	}
	err := ErrNoProducts
	invalid := false
	for i, p := range in.Products {
		if strings.TrimSpace(p.ID) == "" {
			err, invalid = err.WithField(fmt.Sprintf("products[%d].id", i), "is required"), true
		}
		if p.Quantity <= 0 {
			err, invalid = err.WithField(fmt.Sprintf("products[%d].quantity", i), "must be positive"), true
		}
		if p.Price.IsNegative() {
			err, invalid = err.WithField(fmt.Sprintf("products[%d].price", i), "must not be negative"), true
		}
	}
	if invalid {
		return err
	}
	// The gateway charges whole minor units.
	if money.ToMinor(in.TotalAmount) <= 0 {
		return ErrInvalidTotal
	}
	return nil
}

// CreateSession asks the gateway for a hosted checkout. Nothing is persisted.
func (s *Service) CreateSession(ctx context.Context, customer Customer, in SessionInput) (*Session, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	products, err := json.Marshal(in.Products)
	if err != nil {
		return nil, apperr.Internal("failed to encode products", err)
	}

	session, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       customer.Email,
		Amount:      money.ToMinor(in.TotalAmount),
		Currency:    s.cfg.Currency,
		CallbackURL: s.cfg.CallbackURL,
		Metadata: metadata{
			UserID:     customer.UserID,
			Products:   string(products),
			CouponCode: strings.TrimSpace(in.CouponCode),
		},
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout session created",
		zap.String("user_id", customer.UserID),
		zap.String("reference", session.Reference),
		zap.String("total", in.TotalAmount.String()),
	)
	return &Session{
		AuthorizationURL: session.AuthorizationURL,
		Reference:        session.Reference,
		TotalAmount:      in.TotalAmount,
	}, nil
}

// Confirm verifies the payment behind reference and materializes its order.
// The reference is the idempotency key: a reference that already produced
// an order fails with a Conflict.
func (s *Service) Confirm(ctx context.Context, reference string) (*order.Order, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrReferenceRequired
	}

	exists, err := s.orders.ExistsForReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyProcessed
	}

	tx, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	if !tx.Succeeded() {
		return nil, ErrPaymentNotSuccessful.Wrap(fmt.Errorf("transaction %s status %q", reference, tx.Status))
	}

	meta, lines, err := decodeMetadata(tx.Metadata)
	if err != nil {
		return nil, ErrInvalidMetadata.Wrap(err)
	}

	items := s.lineItems(ctx, lines)
	o, err := s.orders.Materialize(ctx, order.MaterializeInput{
		UserID:      meta.UserID,
		Items:       items,
		TotalAmount: money.FromMinor(tx.Amount),
		Reference:   reference,
		CouponCode:  meta.CouponCode,
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, ErrAlreadyProcessed.Wrap(err)
		}
		return nil, err
	}

	if meta.CouponCode != "" {
		if err := s.coupons.Deactivate(ctx, meta.UserID, meta.CouponCode); err != nil {
			s.logger.Error("failed to deactivate coupon after checkout",
				zap.String("order_id", o.ID),
				zap.String("coupon", meta.CouponCode),
				zap.Error(err),
			)
		}
	}
	if err := s.carts.Clear(ctx, meta.UserID); err != nil {
		s.logger.Error("failed to clear cart after checkout",
			zap.String("order_id", o.ID),
			zap.String("user_id", meta.UserID),
			zap.Error(err),
		)
	}

	return o, nil
}

// lineItems snapshots the paid lines, naming them from the catalog when the
// products still exist.
func (s *Service) lineItems(ctx context.Context, lines []Product) []order.LineItem {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ID
	}
	products, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		s.logger.Warn("catalog lookup failed during checkout", zap.Error(err))
	}

	items := make([]order.LineItem, 0, len(lines))
	for _, l := range lines {
		item := order.LineItem{ProductID: l.ID, Quantity: l.Quantity, UnitPrice: l.Price}
		if p, ok := products[l.ID]; ok {
			item.Name = p.Name
			item.Image = p.Image
		}
		items = append(items, item)
	}
	return items
}

// decodeMetadata accepts the metadata either as an object or as a JSON
// string holding one.
func decodeMetadata(raw json.RawMessage) (metadata, []Product, error) {
	var meta metadata
	if len(raw) == 0 {
		return meta, nil, fmt.Errorf("metadata missing")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return meta, nil, err
		}
		raw = json.RawMessage(s)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, nil, fmt.Errorf("decode metadata: %w", err)
	}
	if meta.UserID == "" {
		return meta, nil, fmt.Errorf("metadata has no userId")
	}

	var lines []Product
	if err := json.Unmarshal([]byte(meta.Products), &lines); err != nil {
		return meta, nil, fmt.Errorf("decode products: %w", err)
	}
	if len(lines) == 0 {
		return meta, nil, fmt.Errorf("metadata has no products")
	}
	return meta, lines, nil
}
