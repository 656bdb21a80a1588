package events

import (
	"context"
	"encoding/json"
	"sync"
)

// Recorder is an in-memory Publisher that keeps what it was given. Used by
// tests and local runs without a broker.
type Recorder struct {
	mu        sync.Mutex
	Envelopes []Envelope
	Err       error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	switch e := event.(type) {
	case Envelope:
		r.Envelopes = append(r.Envelopes, e)
	default:
		raw, err := json.Marshal(event)
		if err != nil {
			return err
		}
		r.Envelopes = append(r.Envelopes, Envelope{Data: raw})
	}
	return nil
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.Envelopes))
	for _, e := range r.Envelopes {
		types = append(types, e.Type)
	}
	return types
}
