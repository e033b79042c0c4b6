package document

import "fmt"

// Build folds an ordered patch sequence into a final document, starting from
// the empty document. When no patch set the root explicitly, the root is
// inferred as the first element id that an add or replace targeted at exactly
// /elements/<id>. Upstream generators often emit the first element before
// remembering to point /root at it.
func Build(patches []*Patch) (*Document, error) {
	doc := New()
	inferred := ""
	for _, patch := range patches {
		next, err := Apply(doc, patch)
		if err != nil {
			return nil, fmt.Errorf("apply %s %s: %w", patch.Op, patch.Path, err)
		}
		doc = next
		if inferred == "" && (patch.Op == OpAdd || patch.Op == OpReplace) {
			if id, ok := elementIDFromPath(patch.Path); ok {
				inferred = id
			}
		}
	}
	if doc.Root == "" && inferred != "" {
		doc = doc.Clone()
		doc.Root = inferred
	}
	return doc, nil
}

// elementIDFromPath reports the id when path addresses a whole element
// (/elements/<id>, no deeper sub-path).
func elementIDFromPath(path string) (string, bool) {
	segs, err := ParsePointer(path)
	if err != nil {
		return "", false
	}
	if len(segs) == 2 && segs[0] == "elements" && segs[1] != "" {
		return segs[1], true
	}
	return "", false
}
