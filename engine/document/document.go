package document

import (
	"github.com/mohae/deepcopy"
)

// Document is the artifact built by folding patches: a root element pointer,
// a flat element table, and an arbitrary state tree used for data-binding.
// Documents are immutable by convention: Apply never touches its input and
// always hands back a structurally independent value.
type Document struct {
	Root     string              `json:"root"`
	Elements map[string]*Element `json:"elements"`
	State    any                 `json:"state,omitempty"`
}

// Element is one node in the document. Props may embed deferred
// state-reference markers ({"$path": "..."}) which are stored verbatim and
// never resolved here. Visible, On, and Repeat are opaque sub-trees owned by
// the renderer; this package only round-trips them.
type Element struct {
	Type     string         `json:"type"`
	Props    map[string]any `json:"props,omitempty"`
	Children []string       `json:"children,omitempty"`
	Visible  any            `json:"visible,omitempty"`
	On       any            `json:"on,omitempty"`
	Repeat   any            `json:"repeat,omitempty"`
}

// New returns the empty document: no root, no elements, no state.
func New() *Document {
	return &Document{Elements: make(map[string]*Element)}
}

// Clone returns a deep copy sharing no mutable substructure with d.
func (d *Document) Clone() *Document {
	if d == nil {
		return New()
	}
	copied, ok := deepcopy.Copy(d).(*Document)
	if !ok {
		// deepcopy preserves concrete types; this branch is unreachable.
		return New()
	}
	if copied.Elements == nil {
		copied.Elements = make(map[string]*Element)
	}
	return copied
}
