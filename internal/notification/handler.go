package notification

import (
	"context"
	"encoding/json"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/events"
	"go.uber.org/zap"
)

// Mailer sends the customer-facing emails.
type Mailer interface {
	SendOrderConfirmation(to string, summary email.OrderSummary) error
	SendPaymentApproved(to, orderID string) error
	SendPaymentDeclined(to, orderID, reason string) error
}

// Users resolves the recipient of an event.
type Users interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// Handler processes events for sending notifications
type Handler struct {
	mailer Mailer
	users  Users
	logger *zap.Logger
}

// NewHandler creates a new notification handler
func NewHandler(mailer Mailer, users Users, logger *zap.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		users:  users,
		logger: logger,
	}
}

// HandleEvent processes an event from Kafka. Events the notifier does not
// care about are ignored.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		h.logger.Warn("failed to unmarshal event", zap.ByteString("key", key), zap.Error(err))
		return err
	}

	switch env.Type {
	case events.OrderCreated, events.OrderMaterialized:
		return h.handleOrder(ctx, env)
	case events.OrderPaymentApproved, events.OrderPaymentDeclined:
		return h.handleDecision(ctx, env)
	default:
		return nil
	}
}

func (h *Handler) handleOrder(ctx context.Context, env events.Envelope) error {
	var e events.OrderPayload
	if err := json.Unmarshal(env.Data, &e); err != nil {
		h.logger.Warn("failed to unmarshal order event", zap.String("event_id", env.ID), zap.Error(err))
		return err
	}

	u, ok := h.recipient(ctx, e.UserID)
	if !ok {
		return nil
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	if err := h.mailer.SendOrderConfirmation(u.Email, email.OrderSummary{
		OrderID:       e.OrderID,
		CustomerName:  u.Name,
		Items:         items,
		Total:         e.TotalAmount,
		PaidByGateway: env.Type == events.OrderMaterialized,
	}); err != nil {
		h.logger.Error("failed to send order confirmation", zap.String("order_id", e.OrderID), zap.Error(err))
		return err
	}

	h.logger.Info("order confirmation sent", zap.String("order_id", e.OrderID), zap.String("event", env.Type))
	return nil
}

func (h *Handler) handleDecision(ctx context.Context, env events.Envelope) error {
	var e events.PaymentDecisionPayload
	if err := json.Unmarshal(env.Data, &e); err != nil {
		h.logger.Warn("failed to unmarshal payment decision", zap.String("event_id", env.ID), zap.Error(err))
		return err
	}

	u, ok := h.recipient(ctx, e.UserID)
	if !ok {
		return nil
	}

	var err error
	if env.Type == events.OrderPaymentApproved {
		err = h.mailer.SendPaymentApproved(u.Email, e.OrderID)
	} else {
		err = h.mailer.SendPaymentDeclined(u.Email, e.OrderID, e.Reason)
	}
	if err != nil {
		h.logger.Error("failed to send payment decision", zap.String("order_id", e.OrderID), zap.Error(err))
		return err
	}

	h.logger.Info("payment decision sent", zap.String("order_id", e.OrderID), zap.String("status", e.Status))
	return nil
}

// recipient looks up the user an event is about. A missing user is logged
// and skipped rather than failing the message.
func (h *Handler) recipient(ctx context.Context, userID string) (*user.User, bool) {
	u, err := h.users.Get(ctx, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			h.logger.Warn("recipient not found", zap.String("user_id", userID))
		} else {
			h.logger.Error("recipient lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, false
	}
	return u, true
}
