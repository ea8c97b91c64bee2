package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/docchat-go/internal/chat"
)

// Component events. Sub-models emit these; the root model turns them into orchestrator calls.

type sendPromptMsg struct{ text string }

type uploadFileMsg struct{ path string }

type newSessionMsg struct{}

type selectSessionMsg struct{ id string }

type renameSessionMsg struct {
	id    string
	title string
}

type deleteSessionMsg struct{ id string }

// Backend results, delivered from commands running off the UI goroutine.

type sendResolvedMsg struct {
	pending chat.PendingSend
	outcome chat.Outcome
}

type uploadResolvedMsg struct {
	pending    chat.PendingUpload
	collection string
	err        error
}

// clearBannerMsg hides the banner if it is still the one identified by seq.
type clearBannerMsg struct{ seq int }

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
