package tui

import (
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// maxInputHeight is the number of lines the chat input grows to before scrolling.
const maxInputHeight = 6

const notPDFMessage = "Only .pdf files can be uploaded"

// Input is the chat composer with an attached PDF path prompt.
type Input struct {
	area    textarea.Model
	file    textinput.Model
	picking bool
	err     string
	width   int
	theme   Theme
}

// NewInput creates a focused, empty chat input.
func NewInput(th Theme) Input {
	area := textarea.New()
	area.Placeholder = "Ask anything... (enter to send, shift+enter for a new line, ctrl+o to attach a PDF)"
	area.ShowLineNumbers = false
	area.Prompt = "┃ "
	area.SetHeight(1)
	area.KeyMap.InsertNewline.SetKeys("shift+enter", "ctrl+j")
	area.Focus()

	file := textinput.New()
	file.Prompt = IconPaperclip.Glyph() + " "
	file.Placeholder = "path/to/document.pdf"

	return Input{area: area, file: file, theme: th}
}

// SetWidth resizes the input.
func (i *Input) SetWidth(w int) {
	i.width = w
	i.area.SetWidth(w)
	i.file.SetWidth(w - 4)
}

// Focus gives the input keyboard focus.
func (i *Input) Focus() tea.Cmd {
	if i.picking {
		return i.file.Focus()
	}
	return i.area.Focus()
}

// Blur removes keyboard focus.
func (i *Input) Blur() {
	i.area.Blur()
	i.file.Blur()
}

// Empty reports whether the composer holds only whitespace.
func (i Input) Empty() bool {
	return strings.TrimSpace(i.area.Value()) == ""
}

// Picking reports whether the PDF path prompt is open.
func (i Input) Picking() bool {
	return i.picking
}

// Height is the number of terminal lines the input occupies.
func (i Input) Height() int {
	h := i.area.Height() + 1
	if i.picking {
		h += 2
	}
	if i.err != "" {
		h++
	}
	return h
}

// Update handles key presses. Completed actions are emitted as sendPromptMsg or uploadFileMsg.
func (i Input) Update(msg tea.Msg) (Input, tea.Cmd) {
	key, isKey := msg.(tea.KeyPressMsg)

	if i.picking {
		if isKey {
			switch key.String() {
			case "esc":
				i.closePicker()
				return i, i.area.Focus()
			case "enter":
				path := strings.TrimSpace(i.file.Value())
				if path == "" {
					return i, nil
				}
				if !strings.EqualFold(filepath.Ext(path), ".pdf") {
					i.err = notPDFMessage
					return i, nil
				}
				i.closePicker()
				return i, tea.Batch(i.area.Focus(), emit(uploadFileMsg{path: path}))
			}
		}
		var cmd tea.Cmd
		i.file, cmd = i.file.Update(msg)
		return i, cmd
	}

	if isKey {
		switch key.String() {
		case "enter":
			text := strings.TrimSpace(i.area.Value())
			if text == "" {
				return i, nil
			}
			i.area.Reset()
			i.area.SetHeight(1)
			return i, emit(sendPromptMsg{text: text})
		case "ctrl+o":
			i.picking = true
			i.err = ""
			i.area.Blur()
			return i, i.file.Focus()
		}
	}

	var cmd tea.Cmd
	i.area, cmd = i.area.Update(msg)
	i.fitHeight()
	return i, cmd
}

func (i *Input) closePicker() {
	i.picking = false
	i.err = ""
	i.file.Reset()
	i.file.Blur()
}

// fitHeight grows the textarea with its content up to maxInputHeight.
func (i *Input) fitHeight() {
	h := i.area.LineCount()
	if h < 1 {
		h = 1
	}
	if h > maxInputHeight {
		h = maxInputHeight
	}
	i.area.SetHeight(h)
}

// View renders the composer, the path prompt when open, and any validation error.
func (i Input) View() string {
	var b strings.Builder
	if i.picking {
		b.WriteString(i.theme.hintStyle().Render("Attach a PDF (enter to upload, esc to cancel)"))
		b.WriteString("\n")
		b.WriteString(i.file.View())
		b.WriteString("\n")
	}
	if i.err != "" {
		b.WriteString(i.theme.errorStyle().Render(i.err))
		b.WriteString("\n")
	}
	b.WriteString(i.area.View())
	return b.String()
}
