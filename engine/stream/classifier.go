package stream

import (
	"encoding/json"
	"strings"

	"github.com/patchflow/patchflow/engine/document"
)

// LineKind tags a classified line.
type LineKind int

const (
	LineText LineKind = iota
	LinePatch
)

// ParsedLine is the classification result for one complete line. Text keeps
// the original content byte-for-byte, leading and trailing whitespace
// included (the terminator was already stripped by the line buffer).
type ParsedLine struct {
	Kind  LineKind
	Patch *document.Patch
	Text  string
}

// ClassifyLine decides whether a line is a patch instruction or plain text.
// Blank (whitespace-only) lines classify to nothing and are skipped. A line
// is a patch only when its trimmed form parses as a JSON object carrying
// non-empty op and path fields; every other line — malformed JSON included —
// falls back to text with its original untrimmed content. No structural
// validation happens here: a move without a from is accepted and fails, if
// at all, during application.
func ClassifyLine(line string) (ParsedLine, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ParsedLine{}, false
	}
	var patch document.Patch
	if err := json.Unmarshal([]byte(trimmed), &patch); err == nil && patch.Op != "" && patch.Path != "" {
		return ParsedLine{Kind: LinePatch, Patch: &patch}, true
	}
	return ParsedLine{Kind: LineText, Text: line}, true
}
