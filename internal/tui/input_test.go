package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputSend(t *testing.T) {
	in := NewInput(DefaultTheme)
	in.SetWidth(80)

	in.area.SetValue("   ")
	in, cmd := in.Update(press("enter"))
	assert.Nil(t, cmd, "blank input is not sent")

	in.area.SetValue("  What is Article 21?  ")
	in, cmd = in.Update(press("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, sendPromptMsg{text: "What is Article 21?"}, cmd())
	assert.True(t, in.Empty(), "input is cleared after sending")
}

func TestInputFilePicker(t *testing.T) {
	in := NewInput(DefaultTheme)
	in.SetWidth(80)

	in, _ = in.Update(ctrl('o'))
	require.True(t, in.Picking())

	in.file.SetValue("notes.txt")
	in, cmd := in.Update(press("enter"))
	assert.Nil(t, cmd)
	assert.True(t, in.Picking())
	assert.Equal(t, notPDFMessage, in.err)
	assert.Contains(t, in.View(), notPDFMessage)

	in.file.SetValue("/tmp/Judgment.PDF")
	in, cmd = in.Update(press("enter"))
	assert.False(t, in.Picking())
	assert.Empty(t, in.err)
	assert.Contains(t, run(cmd), uploadFileMsg{path: "/tmp/Judgment.PDF"})

	in, _ = in.Update(ctrl('o'))
	in.file.SetValue("x.pdf")
	in, cmd = in.Update(press("esc"))
	assert.False(t, in.Picking())
	assert.NotContains(t, run(cmd), uploadFileMsg{path: "x.pdf"})
}
