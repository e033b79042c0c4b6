package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patchflow/patchflow/engine/stream"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := RootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProcessCommand(t *testing.T) {
	t.Run("Should emit derived events as JSON lines", func(t *testing.T) {
		path := writeInput(t,
			`{"type":"text-start","id":"t1"}`+"\n"+
				`{"type":"text-delta","id":"t1","delta":"{\"op\":\"add\",\"path\":\"/root\",\"value\":\"c1\"}\nHello\n"}`+"\n"+
				`{"type":"text-end","id":"t1"}`+"\n")
		out, err := runCommand(t, "process", path)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)

		var first stream.Event
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		require.Equal(t, stream.EventDocumentUpdated, first.Type)
		assert.Equal(t, "c1", first.Document.Root)

		var second stream.Event
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
		require.Equal(t, stream.EventTextSegment, second.Type)
		assert.Equal(t, 0, second.Segment.Index)
		assert.Equal(t, "Hello\n", second.Segment.Text)
	})
	t.Run("Should frame output as SSE when requested", func(t *testing.T) {
		path := writeInput(t,
			`{"type":"text-delta","id":"t1","delta":"Hello\n"}` + "\n")
		out, err := runCommand(t, "process", "--format", "sse", path)
		require.NoError(t, err)
		assert.Contains(t, out, "id: 1\n")
		assert.Contains(t, out, "event: text-segment\n")
		assert.Contains(t, out, "data: ")
	})
	t.Run("Should halt on a bad patch by default", func(t *testing.T) {
		path := writeInput(t,
			`{"type":"text-delta","id":"t1","delta":"{\"op\":\"add\",\"path\":\"/bogus/x\",\"value\":1}\n"}` + "\n")
		_, err := runCommand(t, "process", path)
		require.Error(t, err)
	})
	t.Run("Should keep going with --on-patch-error skip", func(t *testing.T) {
		path := writeInput(t,
			`{"type":"text-delta","id":"t1","delta":"{\"op\":\"add\",\"path\":\"/bogus/x\",\"value\":1}\ntext\n"}` + "\n")
		out, err := runCommand(t, "process", "--on-patch-error", "skip", path)
		require.NoError(t, err)
		assert.Contains(t, out, "text-segment")
	})
	t.Run("Should reject unknown output formats", func(t *testing.T) {
		path := writeInput(t, "")
		_, err := runCommand(t, "process", "--format", "xml", path)
		require.Error(t, err)
	})
}

func TestBuildCommand(t *testing.T) {
	t.Run("Should fold patches and infer the root", func(t *testing.T) {
		path := writeInput(t,
			`{"op":"add","path":"/elements/card1","value":{"type":"Card","props":{}}}`+"\n"+
				`{"op":"add","path":"/state/items","value":[]}`+"\n"+
				"free-form text in between is ignored\n")
		out, err := runCommand(t, "build", path)
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.Equal(t, "card1", doc["root"])
		elements := doc["elements"].(map[string]any)
		require.Contains(t, elements, "card1")
	})
	t.Run("Should fail on unappliable patches", func(t *testing.T) {
		path := writeInput(t, `{"op":"add","path":"/elements","value":{}}`+"\n")
		_, err := runCommand(t, "build", path)
		require.Error(t, err)
	})
}
