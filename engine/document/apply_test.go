package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustApply(t *testing.T, doc *Document, patches ...*Patch) *Document {
	t.Helper()
	for _, p := range patches {
		next, err := Apply(doc, p)
		require.NoError(t, err)
		doc = next
	}
	return doc
}

func TestApplyRoot(t *testing.T) {
	t.Run("Should set root via add", func(t *testing.T) {
		doc := mustApply(t, New(), &Patch{Op: OpAdd, Path: "/root", Value: "c1"})
		assert.Equal(t, "c1", doc.Root)
	})
	t.Run("Should set root via replace identically", func(t *testing.T) {
		doc := mustApply(t, New(), &Patch{Op: OpReplace, Path: "/root", Value: "c1"})
		assert.Equal(t, "c1", doc.Root)
	})
	t.Run("Should clear root on remove", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/root", Value: "c1"},
			&Patch{Op: OpRemove, Path: "/root"},
		)
		assert.Empty(t, doc.Root)
	})
	t.Run("Should reject non-string root values", func(t *testing.T) {
		_, err := Apply(New(), &Patch{Op: OpAdd, Path: "/root", Value: 42.0})
		require.ErrorIs(t, err, ErrInvalidPatchPath)
	})
}

func TestApplyElements(t *testing.T) {
	card := map[string]any{
		"type":     "Card",
		"props":    map[string]any{"title": "Hello"},
		"children": []any{"text1"},
	}
	t.Run("Should insert an element from a raw JSON object", func(t *testing.T) {
		doc := mustApply(t, New(), &Patch{Op: OpAdd, Path: "/elements/card1", Value: card})
		require.Contains(t, doc.Elements, "card1")
		el := doc.Elements["card1"]
		assert.Equal(t, "Card", el.Type)
		assert.Equal(t, "Hello", el.Props["title"])
		assert.Equal(t, []string{"text1"}, el.Children)
	})
	t.Run("Should replace a subfield without touching siblings", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/elements/card1", Value: card},
			&Patch{Op: OpReplace, Path: "/elements/card1/props/title", Value: "Bye"},
		)
		el := doc.Elements["card1"]
		assert.Equal(t, "Bye", el.Props["title"])
		assert.Equal(t, "Card", el.Type)
		assert.Equal(t, []string{"text1"}, el.Children)
	})
	t.Run("Should pass $path markers through untouched", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/elements/list", Value: map[string]any{
				"type":  "List",
				"props": map[string]any{"items": map[string]any{"$path": "/state/items"}},
			}},
		)
		assert.Equal(t, map[string]any{"$path": "/state/items"}, doc.Elements["list"].Props["items"])
	})
	t.Run("Should treat removing a missing element as a no-op", func(t *testing.T) {
		before := mustApply(t, New(), &Patch{Op: OpAdd, Path: "/elements/card1", Value: card})
		after, err := Apply(before, &Patch{Op: OpRemove, Path: "/elements/x"})
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.NotSame(t, before, after)
	})
	t.Run("Should remove an existing element", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/elements/card1", Value: card},
			&Patch{Op: OpRemove, Path: "/elements/card1"},
		)
		assert.NotContains(t, doc.Elements, "card1")
	})
	t.Run("Should append children one index at a time", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/elements/card1", Value: map[string]any{"type": "Card"}},
			&Patch{Op: OpAdd, Path: "/elements/card1/children/0", Value: "a"},
			&Patch{Op: OpAdd, Path: "/elements/card1/children/1", Value: "b"},
		)
		assert.Equal(t, []string{"a", "b"}, doc.Elements["card1"].Children)
	})
	t.Run("Should store opaque element sub-trees verbatim", func(t *testing.T) {
		visible := map[string]any{"$exp": "state.count > 0"}
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/elements/card1", Value: map[string]any{"type": "Card"}},
			&Patch{Op: OpAdd, Path: "/elements/card1/visible", Value: visible},
		)
		assert.Equal(t, visible, doc.Elements["card1"].Visible)
	})
	t.Run("Should fail on /elements without an id", func(t *testing.T) {
		_, err := Apply(New(), &Patch{Op: OpAdd, Path: "/elements", Value: card})
		require.ErrorIs(t, err, ErrInvalidPatchPath)
	})
	t.Run("Should fail on subfield writes to unknown elements", func(t *testing.T) {
		_, err := Apply(New(), &Patch{Op: OpReplace, Path: "/elements/nope/props/x", Value: 1.0})
		require.ErrorIs(t, err, ErrInvalidPatchPath)
	})
}

func TestApplyState(t *testing.T) {
	t.Run("Should build arrays element by element", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/state/items", Value: []any{}},
			&Patch{Op: OpAdd, Path: "/state/items/0", Value: map[string]any{"id": "a"}},
			&Patch{Op: OpAdd, Path: "/state/items/1", Value: map[string]any{"id": "b"}},
		)
		state, ok := doc.State.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []any{
			map[string]any{"id": "a"},
			map[string]any{"id": "b"},
		}, state["items"])
	})
	t.Run("Should create intermediate containers on demand", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/state/user/tags/0", Value: "admin"},
		)
		state := doc.State.(map[string]any)
		user := state["user"].(map[string]any)
		assert.Equal(t, []any{"admin"}, user["tags"])
	})
	t.Run("Should replace the whole state tree at /state", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/state", Value: map[string]any{"count": 1.0}},
		)
		assert.Equal(t, map[string]any{"count": 1.0}, doc.State)
	})
	t.Run("Should remove nested state values", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/state/items", Value: []any{"a", "b", "c"}},
			&Patch{Op: OpRemove, Path: "/state/items/1"},
		)
		state := doc.State.(map[string]any)
		assert.Equal(t, []any{"a", "c"}, state["items"])
	})
}

func TestApplyMoveCopyTest(t *testing.T) {
	t.Run("Should move a state value", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/state/draft", Value: "hello"},
			&Patch{Op: OpMove, Path: "/state/final", From: "/state/draft"},
		)
		state := doc.State.(map[string]any)
		assert.Equal(t, "hello", state["final"])
		assert.NotContains(t, state, "draft")
	})
	t.Run("Should copy without aliasing the two locations", func(t *testing.T) {
		doc := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/state/a", Value: map[string]any{"n": 1.0}},
			&Patch{Op: OpCopy, Path: "/state/b", From: "/state/a"},
			&Patch{Op: OpReplace, Path: "/state/b/n", Value: 2.0},
		)
		state := doc.State.(map[string]any)
		assert.Equal(t, map[string]any{"n": 1.0}, state["a"])
		assert.Equal(t, map[string]any{"n": 2.0}, state["b"])
	})
	t.Run("Should pass a matching test without changing the document", func(t *testing.T) {
		before := mustApply(t, New(), &Patch{Op: OpAdd, Path: "/root", Value: "c1"})
		after, err := Apply(before, &Patch{Op: OpTest, Path: "/root", Value: "c1"})
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
	t.Run("Should fail a mismatched test", func(t *testing.T) {
		doc := mustApply(t, New(), &Patch{Op: OpAdd, Path: "/root", Value: "c1"})
		_, err := Apply(doc, &Patch{Op: OpTest, Path: "/root", Value: "c2"})
		require.ErrorIs(t, err, ErrPatchTestFailed)
	})
	t.Run("Should fail a move without a from pointer", func(t *testing.T) {
		_, err := Apply(New(), &Patch{Op: OpMove, Path: "/state/x"})
		require.ErrorIs(t, err, ErrInvalidPatchPath)
	})
}

func TestApplyImmutability(t *testing.T) {
	t.Run("Should never mutate the input document", func(t *testing.T) {
		base := mustApply(t, New(),
			&Patch{Op: OpAdd, Path: "/elements/card1", Value: map[string]any{
				"type":  "Card",
				"props": map[string]any{"title": "Hello"},
			}},
			&Patch{Op: OpAdd, Path: "/state/items", Value: []any{"a"}},
		)
		snapshot := base.Clone()

		mustApply(t, base,
			&Patch{Op: OpReplace, Path: "/elements/card1/props/title", Value: "Changed"},
			&Patch{Op: OpAdd, Path: "/state/items/1", Value: "b"},
			&Patch{Op: OpRemove, Path: "/elements/card1"},
		)

		assert.Equal(t, snapshot, base)
	})
	t.Run("Should hand back structurally independent containers", func(t *testing.T) {
		base := mustApply(t, New(), &Patch{Op: OpAdd, Path: "/elements/card1", Value: map[string]any{"type": "Card"}})
		next := mustApply(t, base, &Patch{Op: OpAdd, Path: "/root", Value: "card1"})
		require.NotSame(t, base, next)
		require.NotSame(t, base.Elements["card1"], next.Elements["card1"])
	})
}
