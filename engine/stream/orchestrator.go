package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/patchflow/patchflow/engine/document"
	"github.com/patchflow/patchflow/pkg/logger"
)

// ErrorPolicy decides what happens when a patch fails to apply mid-stream.
// Upstream generator output is not guaranteed error-free, so both halting the
// derived sequence and skipping the offending patch are defensible; the
// caller picks one explicitly.
type ErrorPolicy string

const (
	// ErrorPolicyHalt ends the derived sequence with the apply error.
	ErrorPolicyHalt ErrorPolicy = "halt"
	// ErrorPolicySkip logs a warning and keeps processing; the document
	// snapshot stays at its last good value.
	ErrorPolicySkip ErrorPolicy = "skip"
)

// Orchestrator bridges the outer event sequence into the derived one. Text
// deltas are reassembled into lines, each line classifies as a patch (folded
// into the running document snapshot) or text (accumulated into the open
// segment); every other event kind forwards verbatim in arrival order.
//
// The orchestrator is itself a Source and is strictly pull-based: it requests
// the next outer event only when its pending queue is empty, so a slow
// consumer stalls upstream consumption instead of buffering unboundedly. Not
// safe for concurrent use; each stream gets its own instance.
type Orchestrator struct {
	source   Source
	policy   ErrorPolicy
	doc      *document.Document
	buffers  map[string]*LineBuffer
	segIndex int
	segOpen  bool
	segText  strings.Builder
	pending  []Event
	failure  error
	done     bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithErrorPolicy overrides the default halt behavior for failing patches.
func WithErrorPolicy(policy ErrorPolicy) Option {
	return func(o *Orchestrator) {
		if policy == ErrorPolicyHalt || policy == ErrorPolicySkip {
			o.policy = policy
		}
	}
}

// New returns an orchestrator consuming source, starting from the empty
// document.
func New(source Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:  source,
		policy:  ErrorPolicyHalt,
		doc:     document.New(),
		buffers: make(map[string]*LineBuffer),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Document returns the current document snapshot. Snapshots are immutable;
// the returned value never changes under the caller.
func (o *Orchestrator) Document() *document.Document {
	return o.doc
}

// Next returns the next derived event, pulling outer events as needed.
// It returns io.EOF once the outer sequence is exhausted and every buffer
// has been flushed. Derived events determined before a failure drain out
// before the error itself surfaces.
func (o *Orchestrator) Next(ctx context.Context) (Event, error) {
	for {
		if len(o.pending) > 0 {
			ev := o.pending[0]
			o.pending = o.pending[1:]
			return ev, nil
		}
		if o.failure != nil {
			err := o.failure
			o.failure = nil
			o.done = true
			return Event{}, err
		}
		if o.done {
			return Event{}, io.EOF
		}
		ev, err := o.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			// The outer stream ended without its own text-end: flush any
			// remaining buffers the same way text-end would.
			o.done = true
			o.failure = o.drain(ctx)
			continue
		}
		if err != nil {
			o.failure = err
			continue
		}
		o.failure = o.process(ctx, ev)
	}
}

// Close releases per-stream buffer state. Subsequent Next calls return
// io.EOF.
func (o *Orchestrator) Close() error {
	o.done = true
	o.pending = nil
	o.failure = nil
	o.buffers = make(map[string]*LineBuffer)
	return nil
}

func (o *Orchestrator) process(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventTextStart:
		// acknowledged, never forwarded
		return nil
	case EventTextDelta:
		buf := o.buffer(ev.StreamID)
		for _, line := range buf.Push(ev.Delta) {
			if err := o.handleLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	case EventTextEnd:
		return o.finishText(ctx, ev.StreamID)
	default:
		o.pending = append(o.pending, ev)
		return nil
	}
}

func (o *Orchestrator) buffer(id string) *LineBuffer {
	buf, ok := o.buffers[id]
	if !ok {
		buf = &LineBuffer{}
		o.buffers[id] = buf
	}
	return buf
}

func (o *Orchestrator) handleLine(ctx context.Context, line string) error {
	parsed, ok := ClassifyLine(line)
	if !ok {
		return nil
	}
	if parsed.Kind == LinePatch {
		o.closeSegment()
		return o.applyPatch(ctx, parsed.Patch)
	}
	o.appendSegment(parsed.Text, true)
	return nil
}

// finishText flushes the identifier's buffer and definitively closes the open
// segment. A flushed remainder that classifies as text joins the segment
// without a terminator: it never was a complete line.
func (o *Orchestrator) finishText(ctx context.Context, id string) error {
	if buf, ok := o.buffers[id]; ok {
		delete(o.buffers, id)
		if rest, ok := buf.Flush(); ok {
			parsed, ok := ClassifyLine(rest)
			if ok && parsed.Kind == LinePatch {
				o.closeSegment()
				if err := o.applyPatch(ctx, parsed.Patch); err != nil {
					return err
				}
			} else if ok {
				o.appendSegment(parsed.Text, false)
			}
		}
	}
	o.closeSegment()
	return nil
}

func (o *Orchestrator) drain(ctx context.Context) error {
	for _, id := range slices.Sorted(maps.Keys(o.buffers)) {
		if err := o.finishText(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) appendSegment(text string, terminate bool) {
	if !o.segOpen {
		o.segOpen = true
		o.segText.Reset()
	}
	o.segText.WriteString(text)
	if terminate {
		o.segText.WriteByte('\n')
	}
	o.pending = append(o.pending, Event{
		Type:    EventTextSegment,
		Segment: &SegmentUpdate{Index: o.segIndex, Text: o.segText.String()},
	})
}

// closeSegment seals the open segment; the next text line starts a fresh one
// under the following index. Closing when nothing is open does nothing, so
// back-to-back patch lines never burn indexes.
func (o *Orchestrator) closeSegment() {
	if !o.segOpen {
		return
	}
	o.segOpen = false
	o.segIndex++
}

func (o *Orchestrator) applyPatch(ctx context.Context, patch *document.Patch) error {
	next, err := document.Apply(o.doc, patch)
	if err != nil {
		if o.policy == ErrorPolicySkip {
			logger.FromContext(ctx).Warn(
				"Skipping patch that failed to apply",
				"op", patch.Op,
				"path", patch.Path,
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("apply patch %s %s: %w", patch.Op, patch.Path, err)
	}
	o.doc = next
	o.pending = append(o.pending, Event{Type: EventDocumentUpdated, Document: next})
	return nil
}
