// Package tui implements the interactive terminal chat client.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/docchat-go/internal/chat"
	"github.com/raphaelgruber/docchat-go/internal/models"
)

// bannerTimeout is how long a transient warning stays visible.
const bannerTimeout = 5 * time.Second

const noSessionBanner = "Please start a new chat before uploading a PDF."

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// Model is the root bubbletea model: sidebar, conversation pane and input.
type Model struct {
	ctx    context.Context
	orch   *chat.Orchestrator
	logger *slog.Logger
	theme  Theme

	sidebar  Sidebar
	input    Input
	viewport viewport.Model
	spin     spinner.Model

	prompts      []Prompt
	promptCursor int

	focus     focusArea
	banner    string
	bannerSeq int

	width  int
	height int
}

// Option configures a Model.
type Option func(*Model)

// WithPrompts replaces the welcome suggestion cards.
func WithPrompts(p []Prompt) Option {
	return func(m *Model) {
		if len(p) > 0 {
			m.prompts = p
		}
	}
}

// WithTheme sets the color scheme.
func WithTheme(th Theme) Option {
	return func(m *Model) { m.theme = th }
}

// WithLogger sets the logger. It must not write to the terminal.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// NewModel creates the root model. A session is created when the orchestrator has none.
// ctx bounds every backend request started from the interface.
func NewModel(ctx context.Context, orch *chat.Orchestrator, opts ...Option) Model {
	m := Model{
		ctx:          ctx,
		orch:         orch,
		logger:       slog.Default(),
		theme:        DefaultTheme,
		prompts:      DefaultPrompts(),
		promptCursor: -1,
		width:        100,
		height:       30,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.sidebar = NewSidebar(m.theme)
	m.input = NewInput(m.theme)
	m.viewport = viewport.New(viewport.WithWidth(60), viewport.WithHeight(20))
	m.spin = spinner.New(spinner.WithSpinner(spinner.Dot))

	if orch.ActiveID() == "" {
		orch.NewSession()
	}
	m.layout()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return m.input.Focus()
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.anyPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		m.refresh()
		return m, cmd

	case sendPromptMsg:
		return m.send(msg.text)

	case uploadFileMsg:
		return m.upload(msg.path)

	case sendResolvedMsg:
		m.orch.CompleteSend(msg.pending, msg.outcome)
		m.refresh()
		return m, nil

	case uploadResolvedMsg:
		m.orch.CompleteUpload(msg.pending, msg.collection, msg.err)
		m.refresh()
		if msg.err != nil {
			return m, m.showBanner("Upload failed: " + msg.err.Error())
		}
		return m, nil

	case newSessionMsg:
		m.orch.NewSession()
		m.promptCursor = -1
		m.refresh()
		return m, nil

	case selectSessionMsg:
		m.orch.SelectSession(msg.id)
		m.promptCursor = -1
		m.refresh()
		return m, nil

	case renameSessionMsg:
		m.orch.RenameSession(msg.id, msg.title)
		return m, nil

	case deleteSessionMsg:
		m.orch.DeleteSession(msg.id)
		m.refresh()
		return m, nil

	case clearBannerMsg:
		if msg.seq == m.bannerSeq {
			m.banner = ""
			m.layout()
		}
		return m, nil
	}

	return m.forward(msg)
}

// forward hands messages the root model does not consume, such as pastes and
// cursor blinks, to the focused component.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusSidebar {
		m.sidebar, cmd = m.sidebar.Update(msg, m.orch.Sessions())
		return m, cmd
	}
	h := m.input.Height()
	m.input, cmd = m.input.Update(msg)
	if m.input.Height() != h {
		m.layout()
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m.toggleFocus()
	case "ctrl+n":
		return m, emit(newSessionMsg{})
	case "ctrl+b":
		m.sidebar.ToggleCollapsed()
		m.layout()
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusInput && m.welcomeShown() && m.input.Empty() && !m.input.Picking() {
		if cmd, ok := m.handleWelcomeKey(msg); ok {
			return m, cmd
		}
	}
	return m.forward(msg)
}

// handleWelcomeKey selects suggestion cards while the input is empty.
func (m *Model) handleWelcomeKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	if len(m.prompts) == 0 {
		return nil, false
	}
	key := msg.String()
	if strings.HasPrefix(key, "alt+") {
		n := strings.TrimPrefix(key, "alt+")
		if len(n) == 1 && n[0] >= '1' && int(n[0]-'0') <= len(m.prompts) {
			return emit(sendPromptMsg{text: m.prompts[n[0]-'1'].Text}), true
		}
	}
	switch key {
	case "up":
		if m.promptCursor > 0 {
			m.promptCursor--
		} else {
			m.promptCursor = len(m.prompts) - 1
		}
		m.refresh()
		return nil, true
	case "down":
		m.promptCursor = (m.promptCursor + 1) % len(m.prompts)
		m.refresh()
		return nil, true
	case "enter":
		if m.promptCursor >= 0 && m.promptCursor < len(m.prompts) {
			text := m.prompts[m.promptCursor].Text
			m.promptCursor = -1
			return emit(sendPromptMsg{text: text}), true
		}
	case "esc":
		m.promptCursor = -1
		m.refresh()
		return nil, true
	}
	return nil, false
}

func (m Model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusInput {
		m.focus = focusSidebar
		m.input.Blur()
		m.sidebar.Focus()
		return m, nil
	}
	m.focus = focusInput
	cmd := m.sidebar.Blur()
	return m, tea.Batch(cmd, m.input.Focus())
}

// send shows the placeholder immediately and resolves the question in a command.
func (m Model) send(text string) (tea.Model, tea.Cmd) {
	p, err := m.orch.BeginSend(text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyPrompt) {
			return m, nil
		}
		m.logger.Debug("send rejected", "error", err)
		return m, m.showBanner(sendBanner(err))
	}
	m.promptCursor = -1
	m.refresh()

	ctx, orch := m.ctx, m.orch
	resolve := func() tea.Msg {
		return sendResolvedMsg{pending: p, outcome: orch.Resolve(ctx, p)}
	}
	return m, tea.Batch(resolve, m.spin.Tick)
}

// upload shows the uploading placeholder and resolves the upload in a command.
func (m Model) upload(path string) (tea.Model, tea.Cmd) {
	p, err := m.orch.BeginUpload(path)
	if err != nil {
		if errors.Is(err, chat.ErrNoActiveSession) {
			return m, m.showBanner(noSessionBanner)
		}
		return m, m.showBanner(sendBanner(err))
	}
	m.refresh()

	ctx, orch := m.ctx, m.orch
	resolve := func() tea.Msg {
		collection, err := orch.ResolveUpload(ctx, p)
		return uploadResolvedMsg{pending: p, collection: collection, err: err}
	}
	return m, tea.Batch(resolve, m.spin.Tick)
}

func sendBanner(err error) string {
	if errors.Is(err, chat.ErrRequestPending) {
		return "Still waiting for the previous answer in this chat."
	}
	return err.Error()
}

func (m *Model) showBanner(text string) tea.Cmd {
	m.bannerSeq++
	m.banner = text
	m.layout()
	seq := m.bannerSeq
	return tea.Tick(bannerTimeout, func(time.Time) tea.Msg {
		return clearBannerMsg{seq: seq}
	})
}

func (m Model) anyPending() bool {
	for _, s := range m.orch.Sessions() {
		if s.Pending() {
			return true
		}
	}
	return false
}

func (m Model) welcomeShown() bool {
	sess, ok := m.orch.Active()
	return ok && len(sess.Messages) == 0
}

func (m Model) mainWidth() int {
	w := m.width - m.sidebar.Width() - 2
	if w < 20 {
		w = 20
	}
	return w
}

// layout recomputes component sizes and redraws the conversation.
func (m *Model) layout() {
	m.sidebar.SetHeight(m.height)
	m.input.SetWidth(m.mainWidth())

	h := m.height - m.input.Height() - m.headerHeight()
	if h < 3 {
		h = 3
	}
	m.viewport.SetWidth(m.mainWidth())
	m.viewport.SetHeight(h)
	m.refresh()
}

func (m Model) headerHeight() int {
	h := 2
	if m.banner != "" {
		h++
	}
	return h
}

// refresh re-renders the active conversation and scrolls to the newest message.
func (m *Model) refresh() {
	sess, ok := m.orch.Active()
	if !ok {
		m.viewport.SetContent("")
		return
	}
	if len(sess.Messages) == 0 {
		m.viewport.SetContent(renderWelcome(m.prompts, m.promptCursor, m.mainWidth(), m.theme))
		m.viewport.GotoTop()
		return
	}
	m.viewport.SetContent(renderConversation(sess.Messages, m.mainWidth(), m.spin.View(), m.theme))
	m.viewport.GotoBottom()
}

// View renders the full interface.
func (m Model) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m Model) renderContent() string {
	sessions := m.orch.Sessions()
	activeID := m.orch.ActiveID()

	main := lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.viewport.View(),
		m.input.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(sessions, activeID), " ", main)
}

func (m Model) header() string {
	sess, _ := m.orch.Active()
	title := m.theme.accentStyle().Render(truncateRunes(sess.Title, m.mainWidth()/2))

	var mode string
	if sess.Mode() == models.ModeRAG {
		mode = m.theme.successStyle().Render(fmt.Sprintf("%s document mode · %s", IconFile.Glyph(), sess.CollectionName))
	} else {
		mode = m.theme.hintStyle().Render(IconSparkles.Glyph() + " direct mode")
	}

	lines := []string{title + "  " + mode}
	if m.banner != "" {
		lines = append(lines, m.theme.errorStyle().Render(IconHelp.Glyph()+" "+m.banner))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Run starts the interactive chat interface and blocks until the user quits.
func Run(ctx context.Context, orch *chat.Orchestrator, opts ...Option) error {
	p := tea.NewProgram(NewModel(ctx, orch, opts...))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
