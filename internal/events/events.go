// Package events defines the domain events the API publishes after a state
// change has been persisted.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	OrderCreated         = "OrderCreated"
	OrderMaterialized    = "OrderMaterialized"
	OrderPaymentApproved = "OrderPaymentApproved"
	OrderPaymentDeclined = "OrderPaymentDeclined"
	CouponDeactivated    = "CouponDeactivated"
)

// Envelope is the wire form of a published event.
type Envelope struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Data          json.RawMessage `json:"data"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewEnvelope serializes data into an envelope.
func NewEnvelope(eventType, aggregateType, aggregateID string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:            uuid.New().String(),
		Type:          eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Data:          raw,
		OccurredAt:    time.Now().UTC(),
	}, nil
}

// Publisher delivers envelopes keyed by aggregate id.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
