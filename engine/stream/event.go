package stream

import (
	"context"

	"github.com/patchflow/patchflow/engine/document"
)

// EventType tags one unit of the protocol stream.
type EventType string

const (
	// Outer kinds consumed from the upstream source.
	EventTextStart EventType = "text-start"
	EventTextDelta EventType = "text-delta"
	EventTextEnd   EventType = "text-end"

	// Derived kinds produced by the orchestrator.
	EventDocumentUpdated EventType = "document-updated"
	EventTextSegment     EventType = "text-segment"
)

// SegmentUpdate carries the cumulative content of one text segment. Text is
// the segment's full accumulated value so far, not a delta: downstream
// consumers re-render the latest value per segment index.
type SegmentUpdate struct {
	Index int    `json:"segmentIndex"`
	Text  string `json:"text"`
}

// Event is one unit of either sequence. Outer text events populate StreamID
// and Delta; derived events populate Document or Segment. Every other kind
// is opaque: whatever arrived in Data is forwarded untouched.
type Event struct {
	Type     EventType          `json:"type"`
	StreamID string             `json:"id,omitempty"`
	Delta    string             `json:"delta,omitempty"`
	Document *document.Document `json:"document,omitempty"`
	Segment  *SegmentUpdate     `json:"segment,omitempty"`
	Data     any                `json:"data,omitempty"`
}

// Source is a pull-based event sequence. Next blocks (or suspends at the
// host boundary) until an event is available and returns io.EOF once the
// sequence is exhausted.
type Source interface {
	Next(ctx context.Context) (Event, error)
}
