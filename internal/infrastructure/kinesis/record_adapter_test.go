package kinesis

import (
	"encoding/json"
	"testing"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/example/storefront/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, id string, data []byte) awsevents.KinesisEventRecord {
	t.Helper()
	return awsevents.KinesisEventRecord{
		EventID: id,
		Kinesis: awsevents.KinesisRecord{
			Data:           data,
			SequenceNumber: "seq-" + id,
		},
	}
}

func envelopeBytes(t *testing.T) []byte {
	t.Helper()
	env, err := events.NewEnvelope(events.OrderCreated, "Order", "order-1", map[string]string{"order_id": "order-1"})
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{name: "valid envelope", data: nil, wantErr: false},
		{name: "empty data", data: []byte{}, wantErr: true},
		{name: "invalid json", data: []byte("{"), wantErr: true},
		{name: "missing required fields", data: []byte(`{"id":"e1"}`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			if data == nil {
				data = envelopeBytes(t)
			}

			env, err := decodeEnvelope(data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, events.OrderCreated, env.Type)
			assert.Equal(t, "order-1", env.AggregateID)
			assert.Equal(t, "Order", env.AggregateType)
			assert.JSONEq(t, `{"order_id":"order-1"}`, string(env.Data))
		})
	}
}

func TestConvertFromKinesisRecord(t *testing.T) {
	env, err := ConvertFromKinesisRecord(record(t, "r1", envelopeBytes(t)))
	require.NoError(t, err)
	assert.Equal(t, "order-1", env.AggregateID)

	_, err = ConvertFromKinesisRecord(record(t, "r2", []byte("garbage")))
	assert.Error(t, err)
}
