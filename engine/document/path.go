package document

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePointer splits a slash-delimited pointer path into decoded segments.
// Pointer escaping follows RFC 6901: ~1 decodes to "/" and ~0 decodes to "~".
// The empty path and paths that do not start with "/" are invalid.
func ParsePointer(path string) ([]string, error) {
	if path == "" || !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPatchPath, path)
	}
	raw := strings.Split(path[1:], "/")
	segs := make([]string, len(raw))
	for i, s := range raw {
		segs[i] = unescapeSegment(s)
	}
	return segs, nil
}

func unescapeSegment(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	// Order matters: ~1 first, so that ~01 decodes to ~1 and not to /.
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}

// parseIndex interprets a segment as an array index.
func parseIndex(seg string) (int, error) {
	idx, err := strconv.Atoi(seg)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("%w: %q is not an array index", ErrInvalidPatchPath, seg)
	}
	return idx, nil
}

func isIndexSegment(seg string) bool {
	_, err := strconv.Atoi(seg)
	return err == nil
}
