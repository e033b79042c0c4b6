package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// JSONLSource decodes an outer event sequence from a reader carrying one JSON
// event per line. It pulls from the reader on demand, one event per Next.
type JSONLSource struct {
	r *bufio.Reader
}

// NewJSONLSource wraps r as a Source.
func NewJSONLSource(r io.Reader) *JSONLSource {
	return &JSONLSource{r: bufio.NewReader(r)}
}

// Next decodes the next event line, skipping blank lines, and returns io.EOF
// once the reader is exhausted.
func (s *JSONLSource) Next(ctx context.Context) (Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}
		line, err := s.r.ReadString('\n')
		if strings.TrimSpace(line) == "" {
			if err != nil {
				if errors.Is(err, io.EOF) {
					return Event{}, io.EOF
				}
				return Event{}, fmt.Errorf("read event line: %w", err)
			}
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			return Event{}, fmt.Errorf("decode event line: %w", err)
		}
		if ev.Type == "" {
			return Event{}, fmt.Errorf("event line missing type: %s", strings.TrimSpace(line))
		}
		return ev, nil
	}
}
