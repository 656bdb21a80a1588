package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

var _ events.Publisher = (*Producer)(nil)

// Producer publishes domain events to a single topic.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer}
}

// Publish writes event keyed by key so events of one aggregate stay ordered on
// one partition.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if env, ok := event.(events.Envelope); ok {
		msg.Headers = []kafka.Header{{Key: "event-type", Value: []byte(env.Type)}}
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
