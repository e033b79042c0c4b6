package document

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// getTree resolves segs inside a generic JSON value tree (maps, slices,
// scalars) and returns the addressed value.
func getTree(node any, segs []string) (any, error) {
	if len(segs) == 0 {
		return node, nil
	}
	head := segs[0]
	switch n := node.(type) {
	case map[string]any:
		child, ok := n[head]
		if !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrInvalidPatchPath, head)
		}
		return getTree(child, segs[1:])
	case []any:
		idx, err := parseIndex(head)
		if err != nil {
			return nil, err
		}
		if idx >= len(n) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidPatchPath, idx)
		}
		return getTree(n[idx], segs[1:])
	default:
		return nil, fmt.Errorf("%w: cannot descend into %T at %q", ErrInvalidPatchPath, node, head)
	}
}

// setTree writes value at segs inside a generic JSON value tree and returns
// the (possibly replaced) tree. When create is true, missing intermediate
// containers are materialized: objects for named segments, arrays for numeric
// ones, so /items followed by /items/0, /items/1 builds an ordered array
// without pre-declared length. Arrays grow as needed, padding with nulls.
func setTree(node any, segs []string, value any, create bool) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	head := segs[0]
	if node == nil {
		if !create {
			return nil, fmt.Errorf("%w: missing container at %q", ErrInvalidPatchPath, head)
		}
		if isIndexSegment(head) {
			node = []any{}
		} else {
			node = map[string]any{}
		}
	}
	switch n := node.(type) {
	case map[string]any:
		child, err := setTree(n[head], segs[1:], value, create)
		if err != nil {
			return nil, err
		}
		n[head] = child
		return n, nil
	case []any:
		idx, err := parseIndex(head)
		if err != nil {
			return nil, err
		}
		if idx > len(n) && !create {
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidPatchPath, idx)
		}
		for idx >= len(n) {
			n = append(n, nil)
		}
		child, err := setTree(n[idx], segs[1:], value, create)
		if err != nil {
			return nil, err
		}
		n[idx] = child
		return n, nil
	default:
		return nil, fmt.Errorf("%w: cannot descend into %T at %q", ErrInvalidPatchPath, node, head)
	}
}

// removeTree deletes the value at segs and returns the updated tree. Removing
// a missing map key is a no-op; removing an array element shifts the tail.
func removeTree(node any, segs []string) (any, error) {
	if len(segs) == 0 {
		return nil, nil
	}
	head := segs[0]
	switch n := node.(type) {
	case map[string]any:
		if len(segs) == 1 {
			delete(n, head)
			return n, nil
		}
		child, ok := n[head]
		if !ok {
			return nil, fmt.Errorf("%w: missing key %q", ErrInvalidPatchPath, head)
		}
		updated, err := removeTree(child, segs[1:])
		if err != nil {
			return nil, err
		}
		n[head] = updated
		return n, nil
	case []any:
		idx, err := parseIndex(head)
		if err != nil {
			return nil, err
		}
		if idx >= len(n) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidPatchPath, idx)
		}
		if len(segs) == 1 {
			return append(n[:idx], n[idx+1:]...), nil
		}
		updated, err := removeTree(n[idx], segs[1:])
		if err != nil {
			return nil, err
		}
		n[idx] = updated
		return n, nil
	default:
		return nil, fmt.Errorf("%w: cannot descend into %T at %q", ErrInvalidPatchPath, node, head)
	}
}

// jsonEqual compares two values after normalizing both through a JSON
// round-trip, so a decoded Element and its raw map form compare equal.
func jsonEqual(a, b any) bool {
	na, err := normalizeJSON(a)
	if err != nil {
		return false
	}
	nb, err := normalizeJSON(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

func normalizeJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
