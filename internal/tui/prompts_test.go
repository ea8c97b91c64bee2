package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPrompts(t *testing.T) {
	prompts, err := LoadPrompts("")
	require.NoError(t, err)
	require.Len(t, prompts, 4)
	assert.Equal(t, "Explain the structure of the Indian judiciary.", prompts[0].Text)
	assert.Equal(t, IconEnvelope, prompts[1].Icon)
}

func TestLoadPrompts(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	t.Run("valid file", func(t *testing.T) {
		p := write("ok.yaml", `
prompts:
  - text: Summarize the uploaded contract.
    icon: file
  - text: "  List the parties.  "
    icon: nonsense
  - text: ""
  - text: Three
  - text: Four
  - text: Five
`)
		prompts, err := LoadPrompts(p)
		require.NoError(t, err)
		require.Len(t, prompts, maxPrompts)
		assert.Equal(t, Prompt{Text: "Summarize the uploaded contract.", Icon: IconFile}, prompts[0])
		assert.Equal(t, Prompt{Text: "List the parties.", Icon: IconComment}, prompts[1])
		assert.Equal(t, "Five", prompts[3].Text)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := LoadPrompts(write("empty.yaml", "prompts: []\n"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadPrompts(write("bad.yaml", "prompts: [unclosed\n"))
		assert.ErrorContains(t, err, "parse prompts file")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPrompts(filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "read prompts file")
	})
}

func TestRenderWelcome(t *testing.T) {
	out := renderWelcome(DefaultPrompts(), 0, 100, DefaultTheme)
	assert.Contains(t, out, "Hello!")
	assert.Contains(t, out, "Assist You Today?")
	assert.Contains(t, out, "alt+4")
}
