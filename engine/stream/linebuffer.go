package stream

import "strings"

// LineBuffer reassembles lines out of arbitrarily chunked text fragments.
// Transport chunk boundaries never align with line boundaries, so the
// unterminated tail of each push stays buffered until the terminator (or the
// flush) arrives.
type LineBuffer struct {
	rest string
}

// Push appends fragment and returns every complete line now available, in
// order, terminators stripped. The trailing unterminated portion remains
// buffered for the next push.
func (b *LineBuffer) Push(fragment string) []string {
	b.rest += fragment
	if !strings.Contains(b.rest, "\n") {
		return nil
	}
	parts := strings.Split(b.rest, "\n")
	b.rest = parts[len(parts)-1]
	return parts[:len(parts)-1]
}

// Flush returns the buffered tail as a final pseudo-line and clears the
// buffer. A tail that is empty or whitespace-only is discarded and reported
// as absent; that is the only point where LineBuffer ever drops input.
func (b *LineBuffer) Flush() (string, bool) {
	rest := b.rest
	b.rest = ""
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

// Len reports the number of buffered bytes awaiting a terminator.
func (b *LineBuffer) Len() int {
	return len(b.rest)
}
