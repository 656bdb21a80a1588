// Package kinesis decodes event envelopes delivered through a Kinesis stream,
// the transport used when the notifier runs as a Lambda function.
package kinesis

import (
	"encoding/json"
	"fmt"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/example/storefront/internal/events"
)

// ConvertFromKinesisRecord decodes the envelope carried in a record's data.
func ConvertFromKinesisRecord(record awsevents.KinesisEventRecord) (*events.Envelope, error) {
	return decodeEnvelope(record.Kinesis.Data)
}

func decodeEnvelope(data []byte) (*events.Envelope, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("record data is empty")
	}

	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	if env.ID == "" || env.AggregateID == "" || env.Type == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, aggregate_id=%s, type=%s",
			env.ID, env.AggregateID, env.Type)
	}
	return &env, nil
}
