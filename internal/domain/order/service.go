package order

import (
	"context"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const snapshotTTL = 10 * time.Minute

// Repository persists orders. Create returns ErrDuplicateReference when an
// order with the same payment reference already exists. The list methods
// return an empty slice, not an error, when nothing matches.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	GetByReference(ctx context.Context, reference string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
}

type CreateInput struct {
	Items           []LineItem       `json:"items"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
}

// MaterializeInput describes a payment the gateway has already confirmed.
type MaterializeInput struct {
	UserID      string
	Items       []LineItem
	TotalAmount decimal.Decimal
	Reference   string
	CouponCode  string
}

type Service struct {
	repo      Repository
	cache     cache.Cache
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(repo Repository, c cache.Cache, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, publisher: publisher, logger: logger}
}

// SnapshotKey is the cache key of a single order.
func SnapshotKey(id string) string {
	return "order:" + id
}

// Create records a manual-approval order awaiting a payment decision.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Order, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if err := validateAddress(in.ShippingAddress); err != nil {
		return nil, err
	}
	if in.TotalAmount.IsNegative() {
		return nil, ErrInvalidOrder.WithField("totalAmount", "must not be negative")
	}

	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Flow:            FlowManualApproval,
		Items:           in.Items,
		ShippingAddress: in.ShippingAddress,
		TotalAmount:     in.TotalAmount,
		PaymentStatus:   PaymentPending,
		OrderStatus:     StatusProcessing,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order created", zap.String("order_id", o.ID), zap.String("user_id", userID))
	s.publish(ctx, events.OrderCreated, o)
	return o, nil
}

// Materialize records an order for a payment the gateway confirmed. The
// reference is the idempotency key: a second call with the same reference
// fails with ErrDuplicateReference.
func (s *Service) Materialize(ctx context.Context, in MaterializeInput) (*Order, error) {
	if strings.TrimSpace(in.Reference) == "" {
		return nil, ErrInvalidOrder.WithField("reference", "is required")
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := &Order{
		ID:               uuid.New().String(),
		UserID:           in.UserID,
		Flow:             FlowGatewayConfirmed,
		Items:            in.Items,
		TotalAmount:      in.TotalAmount,
		PaymentStatus:    PaymentApproved,
		OrderStatus:      StatusProcessing,
		PaymentReference: in.Reference,
		CouponCode:       in.CouponCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("order materialized",
		zap.String("order_id", o.ID),
		zap.String("user_id", o.UserID),
		zap.String("reference", o.PaymentReference),
	)
	s.publish(ctx, events.OrderMaterialized, o)
	return o, nil
}

// ApprovePayment marks the payment approved and the order processing.
func (s *Service) ApprovePayment(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanTransitionTo(PaymentApproved) {
		return nil, o.transitionError(PaymentApproved)
	}

	o.PaymentStatus = PaymentApproved
	o.OrderStatus = StatusProcessing
	o.UpdatedAt = time.Now().UTC()
	if err := s.update(ctx, o); err != nil {
		return nil, err
	}

	s.publishDecision(ctx, events.OrderPaymentApproved, o)
	return o, nil
}

// DeclinePayment marks the payment rejected. An empty reason falls back to
// DefaultDeclineReason.
func (s *Service) DeclinePayment(ctx context.Context, id, reason string) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.CanTransitionTo(PaymentRejected) {
		return nil, o.transitionError(PaymentRejected)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultDeclineReason
	}
	o.PaymentStatus = PaymentRejected
	o.RejectionReason = reason
	o.UpdatedAt = time.Now().UTC()
	if err := s.update(ctx, o); err != nil {
		return nil, err
	}

	s.publishDecision(ctx, events.OrderPaymentDeclined, o)
	return o, nil
}

// GetByID returns the order if the viewer owns it or is an admin.
func (s *Service) GetByID(ctx context.Context, id, viewerID string, viewerRole auth.Role) (*Order, error) {
	o, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(o, viewerID, viewerRole); err != nil {
		return nil, err
	}
	return o, nil
}

// Authorize allows owners and admins to read an order.
func Authorize(o *Order, viewerID string, viewerRole auth.Role) error {
	if o.UserID == viewerID || viewerRole.IsAdmin() {
		return nil
	}
	return ErrOrderForbidden
}

// ListForUser returns the user's orders, newest first. No orders is
// reported as ErrNoOrders.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}

// ListAll returns every order, newest first. No orders is reported as
// ErrNoOrders.
func (s *Service) ListAll(ctx context.Context) ([]*Order, error) {
	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}

// ExistsForReference reports whether an order was already materialized for
// the payment reference.
func (s *Service) ExistsForReference(ctx context.Context, reference string) (bool, error) {
	_, err := s.repo.GetByReference(ctx, reference)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) get(ctx context.Context, id string) (*Order, error) {
	var cached Order
	ok, err := cache.GetJSON(ctx, s.cache, SnapshotKey(id), &cached)
	if err != nil {
		s.logger.Warn("order snapshot read failed", zap.String("order_id", id), zap.Error(err))
	}
	if ok {
		return &cached, nil
	}

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, SnapshotKey(id), o, snapshotTTL); err != nil {
		s.logger.Warn("order snapshot write failed", zap.String("order_id", id), zap.Error(err))
	}
	return o, nil
}

func (s *Service) update(ctx context.Context, o *Order) error {
	if err := s.repo.Update(ctx, o); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, SnapshotKey(o.ID)); err != nil {
		s.logger.Warn("order snapshot invalidation failed", zap.String("order_id", o.ID), zap.Error(err))
	}
	return nil
}

func (s *Service) publish(ctx context.Context, eventType string, o *Order) {
	lines := make([]events.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, events.OrderLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	s.emit(ctx, eventType, o.ID, events.OrderPayload{
		OrderID:          o.ID,
		UserID:           o.UserID,
		Flow:             string(o.Flow),
		Items:            lines,
		TotalAmount:      o.TotalAmount,
		PaymentReference: o.PaymentReference,
		CreatedAt:        o.CreatedAt,
	})
}

func (s *Service) publishDecision(ctx context.Context, eventType string, o *Order) {
	s.emit(ctx, eventType, o.ID, events.PaymentDecisionPayload{
		OrderID: o.ID,
		UserID:  o.UserID,
		Status:  string(o.PaymentStatus),
		Reason:  o.RejectionReason,
		At:      o.UpdatedAt,
	})
}

func (s *Service) emit(ctx context.Context, eventType, orderID string, payload any) {
	env, err := events.NewEnvelope(eventType, AggregateType, orderID, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, orderID, env)
	}
	if err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("order_id", orderID),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
