package document

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mohae/deepcopy"
)

// Apply applies one patch to doc and returns a new document. The input
// document is never mutated: the whole tree is deep-copied up front, so the
// result shares no mutable substructure with doc. On any error the input is
// returned untouched semantics-wise (the error carries the failure, no
// partial application escapes).
func Apply(doc *Document, patch *Patch) (*Document, error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: nil patch", ErrInvalidPatchPath)
	}
	if doc == nil {
		doc = New()
	}
	segs, err := ParsePointer(patch.Path)
	if err != nil {
		return nil, err
	}
	switch patch.Op {
	case OpAdd, OpReplace:
		next := doc.Clone()
		if err := setValue(next, segs, patch.Value); err != nil {
			return nil, err
		}
		return next, nil
	case OpRemove:
		next := doc.Clone()
		if err := removeValue(next, segs); err != nil {
			return nil, err
		}
		return next, nil
	case OpMove, OpCopy:
		fromSegs, err := ParsePointer(patch.From)
		if err != nil {
			return nil, err
		}
		next := doc.Clone()
		val, err := getValue(next, fromSegs)
		if err != nil {
			return nil, err
		}
		if patch.Op == OpMove {
			if err := removeValue(next, fromSegs); err != nil {
				return nil, err
			}
		} else {
			val = deepcopy.Copy(val)
		}
		if err := setValue(next, segs, val); err != nil {
			return nil, err
		}
		return next, nil
	case OpTest:
		cur, err := getValue(doc, segs)
		if err != nil {
			return nil, err
		}
		if !jsonEqual(cur, patch.Value) {
			return nil, fmt.Errorf("%w: at %s", ErrPatchTestFailed, patch.Path)
		}
		// test never changes the document
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: unsupported op %q", ErrInvalidPatchPath, patch.Op)
	}
}

func setValue(d *Document, segs []string, value any) error {
	switch segs[0] {
	case "root":
		if len(segs) != 1 {
			return fmt.Errorf("%w: /root takes no sub-path", ErrInvalidPatchPath)
		}
		id, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: /root value must be a string", ErrInvalidPatchPath)
		}
		d.Root = id
		return nil
	case "elements":
		return setElement(d, segs[1:], value)
	case "state":
		updated, err := setTree(d.State, segs[1:], value, true)
		if err != nil {
			return err
		}
		d.State = updated
		return nil
	default:
		return fmt.Errorf("%w: unknown top-level segment %q", ErrInvalidPatchPath, segs[0])
	}
}

func setElement(d *Document, segs []string, value any) error {
	if len(segs) == 0 || segs[0] == "" {
		return fmt.Errorf("%w: /elements requires an id segment", ErrInvalidPatchPath)
	}
	id := segs[0]
	if len(segs) == 1 {
		el, err := decodeElement(value)
		if err != nil {
			return err
		}
		d.Elements[id] = el
		return nil
	}
	el, ok := d.Elements[id]
	if !ok {
		return fmt.Errorf("%w: unknown element %q", ErrInvalidPatchPath, id)
	}
	return setElementField(el, segs[1:], value)
}

func setElementField(el *Element, segs []string, value any) error {
	switch field := segs[0]; field {
	case "type":
		if len(segs) != 1 {
			return fmt.Errorf("%w: type takes no sub-path", ErrInvalidPatchPath)
		}
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: type must be a string", ErrInvalidPatchPath)
		}
		el.Type = s
		return nil
	case "props":
		if len(segs) == 1 {
			props, err := decodeStringMap(value)
			if err != nil {
				return err
			}
			el.Props = props
			return nil
		}
		if el.Props == nil {
			el.Props = map[string]any{}
		}
		updated, err := setTree(el.Props, segs[1:], value, true)
		if err != nil {
			return err
		}
		el.Props = updated.(map[string]any)
		return nil
	case "children":
		return setChildren(el, segs[1:], value)
	case "visible", "on", "repeat":
		target, _ := el.opaqueField(field)
		if len(segs) == 1 {
			*target = value
			return nil
		}
		updated, err := setTree(*target, segs[1:], value, true)
		if err != nil {
			return err
		}
		*target = updated
		return nil
	default:
		return fmt.Errorf("%w: unknown element field %q", ErrInvalidPatchPath, field)
	}
}

// setChildren sets the whole children list, or one slot by index. Writing at
// index == len appends, so lists can be built one id at a time.
func setChildren(el *Element, segs []string, value any) error {
	if len(segs) == 0 {
		children, err := decodeStringSlice(value)
		if err != nil {
			return err
		}
		el.Children = children
		return nil
	}
	if len(segs) != 1 {
		return fmt.Errorf("%w: children items take no sub-path", ErrInvalidPatchPath)
	}
	idx, err := parseIndex(segs[0])
	if err != nil {
		return err
	}
	id, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: children items must be element ids", ErrInvalidPatchPath)
	}
	switch {
	case idx < len(el.Children):
		el.Children[idx] = id
	case idx == len(el.Children):
		el.Children = append(el.Children, id)
	default:
		return fmt.Errorf("%w: children index %d out of range", ErrInvalidPatchPath, idx)
	}
	return nil
}

func removeValue(d *Document, segs []string) error {
	switch segs[0] {
	case "root":
		if len(segs) != 1 {
			return fmt.Errorf("%w: /root takes no sub-path", ErrInvalidPatchPath)
		}
		// remove on /root clears the pointer rather than erroring, matching
		// the add/replace tolerance at this path.
		d.Root = ""
		return nil
	case "elements":
		if len(segs) < 2 || segs[1] == "" {
			return fmt.Errorf("%w: /elements requires an id segment", ErrInvalidPatchPath)
		}
		id := segs[1]
		if len(segs) == 2 {
			// removing a missing id is a no-op
			delete(d.Elements, id)
			return nil
		}
		el, ok := d.Elements[id]
		if !ok {
			return fmt.Errorf("%w: unknown element %q", ErrInvalidPatchPath, id)
		}
		return removeElementField(el, segs[2:])
	case "state":
		if len(segs) == 1 {
			d.State = nil
			return nil
		}
		updated, err := removeTree(d.State, segs[1:])
		if err != nil {
			return err
		}
		d.State = updated
		return nil
	default:
		return fmt.Errorf("%w: unknown top-level segment %q", ErrInvalidPatchPath, segs[0])
	}
}

func removeElementField(el *Element, segs []string) error {
	switch field := segs[0]; field {
	case "props":
		if len(segs) == 1 {
			el.Props = nil
			return nil
		}
		if el.Props == nil {
			return fmt.Errorf("%w: element has no props", ErrInvalidPatchPath)
		}
		updated, err := removeTree(el.Props, segs[1:])
		if err != nil {
			return err
		}
		el.Props = updated.(map[string]any)
		return nil
	case "children":
		if len(segs) == 1 {
			el.Children = nil
			return nil
		}
		if len(segs) != 2 {
			return fmt.Errorf("%w: children items take no sub-path", ErrInvalidPatchPath)
		}
		idx, err := parseIndex(segs[1])
		if err != nil {
			return err
		}
		if idx >= len(el.Children) {
			return fmt.Errorf("%w: children index %d out of range", ErrInvalidPatchPath, idx)
		}
		el.Children = append(el.Children[:idx], el.Children[idx+1:]...)
		return nil
	case "visible", "on", "repeat":
		target, _ := el.opaqueField(field)
		if len(segs) == 1 {
			*target = nil
			return nil
		}
		updated, err := removeTree(*target, segs[1:])
		if err != nil {
			return err
		}
		*target = updated
		return nil
	default:
		return fmt.Errorf("%w: cannot remove element field %q", ErrInvalidPatchPath, field)
	}
}

func getValue(d *Document, segs []string) (any, error) {
	switch segs[0] {
	case "root":
		if len(segs) != 1 {
			return nil, fmt.Errorf("%w: /root takes no sub-path", ErrInvalidPatchPath)
		}
		return d.Root, nil
	case "elements":
		if len(segs) < 2 || segs[1] == "" {
			return nil, fmt.Errorf("%w: /elements requires an id segment", ErrInvalidPatchPath)
		}
		el, ok := d.Elements[segs[1]]
		if !ok {
			return nil, fmt.Errorf("%w: unknown element %q", ErrInvalidPatchPath, segs[1])
		}
		if len(segs) == 2 {
			return el, nil
		}
		return getElementField(el, segs[2:])
	case "state":
		return getTree(d.State, segs[1:])
	default:
		return nil, fmt.Errorf("%w: unknown top-level segment %q", ErrInvalidPatchPath, segs[0])
	}
}

func getElementField(el *Element, segs []string) (any, error) {
	switch field := segs[0]; field {
	case "type":
		if len(segs) != 1 {
			return nil, fmt.Errorf("%w: type takes no sub-path", ErrInvalidPatchPath)
		}
		return el.Type, nil
	case "props":
		if len(segs) == 1 {
			return el.Props, nil
		}
		return getTree(el.Props, segs[1:])
	case "children":
		if len(segs) == 1 {
			return el.Children, nil
		}
		if len(segs) != 2 {
			return nil, fmt.Errorf("%w: children items take no sub-path", ErrInvalidPatchPath)
		}
		idx, err := parseIndex(segs[1])
		if err != nil {
			return nil, err
		}
		if idx >= len(el.Children) {
			return nil, fmt.Errorf("%w: children index %d out of range", ErrInvalidPatchPath, idx)
		}
		return el.Children[idx], nil
	case "visible", "on", "repeat":
		target, _ := el.opaqueField(field)
		if len(segs) == 1 {
			return *target, nil
		}
		return getTree(*target, segs[1:])
	default:
		return nil, fmt.Errorf("%w: unknown element field %q", ErrInvalidPatchPath, field)
	}
}

func (e *Element) opaqueField(name string) (*any, bool) {
	switch name {
	case "visible":
		return &e.Visible, true
	case "on":
		return &e.On, true
	case "repeat":
		return &e.Repeat, true
	default:
		return nil, false
	}
}

// decodeElement converts a patch value into an Element. Raw JSON objects are
// decoded by json tag; already-typed elements (as produced by move/copy) are
// deep-copied so the two locations never alias.
func decodeElement(value any) (*Element, error) {
	switch v := value.(type) {
	case *Element:
		return deepcopy.Copy(v).(*Element), nil
	case Element:
		return deepcopy.Copy(&v).(*Element), nil
	case nil:
		return nil, fmt.Errorf("%w: element value must be an object", ErrInvalidPatchPath)
	}
	el := &Element{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: el})
	if err != nil {
		return nil, fmt.Errorf("build element decoder: %w", err)
	}
	if err := dec.Decode(value); err != nil {
		return nil, fmt.Errorf("%w: element value: %v", ErrInvalidPatchPath, err)
	}
	return el, nil
}

func decodeStringMap(value any) (map[string]any, error) {
	if value == nil {
		return nil, nil
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %T", ErrInvalidPatchPath, value)
	}
	return m, nil
}

func decodeStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected a string at index %d, got %T", ErrInvalidPatchPath, i, item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected an array, got %T", ErrInvalidPatchPath, value)
	}
}
