package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Envelope is the transport representation of one derived event, suitable for
// persistence or broadcast to subscribers.
type Envelope struct {
	ID        int64           `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"ts"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope constructs an envelope from the provided event.
func NewEnvelope(id int64, event Event, ts time.Time) (Envelope, error) {
	if event.Type == "" {
		return Envelope{}, fmt.Errorf("stream: event type is required")
	}
	payload, err := json.Marshal(event.payload())
	if err != nil {
		return Envelope{}, fmt.Errorf("stream: marshal payload: %w", err)
	}
	return Envelope{
		ID:        id,
		Type:      event.Type,
		Timestamp: ts.UTC(),
		Data:      payload,
	}, nil
}

// payload picks the transport body for the event: derived events carry their
// typed payload, forwarded events carry whatever arrived with them.
func (e Event) payload() any {
	switch e.Type {
	case EventDocumentUpdated:
		return e.Document
	case EventTextSegment:
		return e.Segment
	default:
		if e.Data != nil {
			return e.Data
		}
		return e
	}
}

// SSEWriter frames envelopes as server-sent events (id/event/data blocks).
// Sequencing starts at 1 and increments per event written.
type SSEWriter struct {
	w   io.Writer
	seq int64
	now func() time.Time
}

// NewSSEWriter returns a writer emitting SSE frames to w.
func NewSSEWriter(w io.Writer) *SSEWriter {
	return &SSEWriter{w: w, now: time.Now}
}

// WriteEvent encodes event as one SSE frame.
func (s *SSEWriter) WriteEvent(event Event) error {
	s.seq++
	env, err := NewEnvelope(s.seq, event, s.now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("stream: marshal envelope: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", env.ID, env.Type, data); err != nil {
		return fmt.Errorf("stream: write frame: %w", err)
	}
	return nil
}
