package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/docchat-go/internal/models"
)

// Sidebar widths in columns.
const (
	sidebarWidth          = 30
	collapsedSidebarWidth = 4
)

// menuItems are the actions in a session's context menu.
var menuItems = []string{"Rename", "Delete"}

// Sidebar lists chat sessions with search, a per-session menu and inline rename.
// It holds only presentation state; session data is passed in by the root model.
type Sidebar struct {
	search    textinput.Model
	searching bool

	cursor     int
	menuID     string
	menuCursor int

	renamingID string
	rename     textinput.Model

	collapsed bool
	focused   bool
	height    int
	theme     Theme
}

// NewSidebar creates an expanded, unfocused sidebar.
func NewSidebar(th Theme) Sidebar {
	search := textinput.New()
	search.Prompt = IconSearch.Glyph() + " "
	search.Placeholder = "Search chats"
	search.SetWidth(sidebarWidth - 6)

	rename := textinput.New()
	rename.Prompt = IconPencil.Glyph() + " "
	rename.SetWidth(sidebarWidth - 6)

	return Sidebar{search: search, rename: rename, theme: th}
}

// Filter returns the sessions whose title contains term, ignoring case.
// An empty term matches everything.
func Filter(sessions []models.ChatSession, term string) []models.ChatSession {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return sessions
	}
	var out []models.ChatSession
	for _, s := range sessions {
		if strings.Contains(strings.ToLower(s.Title), term) {
			out = append(out, s)
		}
	}
	return out
}

// Width is the number of columns the sidebar occupies.
func (s Sidebar) Width() int {
	if s.collapsed {
		return collapsedSidebarWidth
	}
	return sidebarWidth
}

// SetHeight sets the number of rows available.
func (s *Sidebar) SetHeight(h int) {
	s.height = h
}

// Collapsed reports whether only icons are shown.
func (s Sidebar) Collapsed() bool {
	return s.collapsed
}

// ToggleCollapsed switches between the full list and the icon strip.
// Collapsing abandons search editing and closes any open menu.
func (s *Sidebar) ToggleCollapsed() {
	s.collapsed = !s.collapsed
	if s.collapsed {
		s.CloseMenu()
		s.searching = false
		s.search.Blur()
	}
}

// SearchTerm returns the active filter text.
func (s Sidebar) SearchTerm() string {
	return s.search.Value()
}

// MenuOpen returns the id of the session whose menu is open, or "".
func (s Sidebar) MenuOpen() string {
	return s.menuID
}

// ToggleMenu opens the menu for id, closing any other. Toggling the open menu closes it.
func (s *Sidebar) ToggleMenu(id string) {
	if s.menuID == id {
		s.CloseMenu()
		return
	}
	s.menuID = id
	s.menuCursor = 0
}

// CloseMenu closes the open menu, if any.
func (s *Sidebar) CloseMenu() {
	s.menuID = ""
	s.menuCursor = 0
}

// Renaming returns the id of the session being renamed, or "".
func (s Sidebar) Renaming() string {
	return s.renamingID
}

// StartRename opens the inline editor seeded with the session title and closes the menu.
func (s *Sidebar) StartRename(sess models.ChatSession) tea.Cmd {
	s.CloseMenu()
	s.renamingID = sess.ID
	s.rename.SetValue(sess.Title)
	s.rename.CursorEnd()
	return s.rename.Focus()
}

// CommitRename ends editing and returns the new title.
// ok is false when nothing was being renamed or the trimmed title is empty.
func (s *Sidebar) CommitRename() (id, title string, ok bool) {
	id = s.renamingID
	title = strings.TrimSpace(s.rename.Value())
	s.CancelRename()
	if id == "" || title == "" {
		return "", "", false
	}
	return id, title, true
}

// CancelRename ends editing without a result.
func (s *Sidebar) CancelRename() {
	s.renamingID = ""
	s.rename.Reset()
	s.rename.Blur()
}

// Focus gives the sidebar keyboard focus.
func (s *Sidebar) Focus() {
	s.focused = true
}

// Blur removes focus. A rename in progress is committed and an open menu is closed.
func (s *Sidebar) Blur() tea.Cmd {
	s.focused = false
	s.searching = false
	s.search.Blur()
	s.CloseMenu()
	if id, title, ok := s.CommitRename(); ok {
		return emit(renameSessionMsg{id: id, title: title})
	}
	return nil
}

// Update handles keys while the sidebar is focused.
func (s Sidebar) Update(msg tea.Msg, sessions []models.ChatSession) (Sidebar, tea.Cmd) {
	key, isKey := msg.(tea.KeyPressMsg)

	if s.renamingID != "" {
		if isKey {
			switch key.String() {
			case "enter":
				if id, title, ok := s.CommitRename(); ok {
					return s, emit(renameSessionMsg{id: id, title: title})
				}
				return s, nil
			case "esc":
				s.CancelRename()
				return s, nil
			}
		}
		var cmd tea.Cmd
		s.rename, cmd = s.rename.Update(msg)
		return s, cmd
	}

	if s.searching {
		if isKey {
			switch key.String() {
			case "enter", "down":
				s.searching = false
				s.search.Blur()
				s.cursor = 0
				return s, nil
			case "esc":
				s.searching = false
				s.search.Reset()
				s.search.Blur()
				return s, nil
			}
		}
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		s.cursor = 0
		return s, cmd
	}

	if !isKey {
		return s, nil
	}

	visible := Filter(sessions, s.search.Value())
	s.clampCursor(len(visible))

	if s.menuID != "" {
		switch key.String() {
		case "up", "k":
			if s.menuCursor > 0 {
				s.menuCursor--
			}
		case "down", "j":
			if s.menuCursor < len(menuItems)-1 {
				s.menuCursor++
			}
		case "esc", "m", ".":
			s.CloseMenu()
		case "enter":
			id := s.menuID
			action := menuItems[s.menuCursor]
			s.CloseMenu()
			sess, ok := findSession(sessions, id)
			if !ok {
				return s, nil
			}
			if action == "Rename" {
				return s, s.StartRename(sess)
			}
			return s, emit(deleteSessionMsg{id: id})
		}
		return s, nil
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(visible)-1 {
			s.cursor++
		}
	case "/":
		s.searching = true
		return s, s.search.Focus()
	case "esc":
		s.CloseMenu()
	case "n":
		return s, emit(newSessionMsg{})
	case "enter":
		if len(visible) > 0 {
			return s, emit(selectSessionMsg{id: visible[s.cursor].ID})
		}
	case "m", ".":
		if len(visible) > 0 {
			s.ToggleMenu(visible[s.cursor].ID)
		}
	case "r":
		if len(visible) > 0 {
			return s, s.StartRename(visible[s.cursor])
		}
	case "d", "delete":
		if len(visible) > 0 {
			return s, emit(deleteSessionMsg{id: visible[s.cursor].ID})
		}
	}
	return s, nil
}

func (s *Sidebar) clampCursor(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func findSession(sessions []models.ChatSession, id string) (models.ChatSession, bool) {
	for _, sess := range sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return models.ChatSession{}, false
}

// View renders the sidebar for the given sessions.
func (s Sidebar) View(sessions []models.ChatSession, activeID string) string {
	th := s.theme
	style := th.paneStyle(s.focused).Height(s.height).Width(s.Width() - 1)

	if s.collapsed {
		icons := []string{
			th.accentStyle().Render(IconLogo.Glyph()),
			"",
			IconPlus.Glyph(),
			IconSearch.Glyph(),
			IconHistory.Glyph(),
		}
		return style.Render(strings.Join(icons, "\n"))
	}

	var b strings.Builder
	b.WriteString(th.accentStyle().Render(IconLogo.Glyph() + " docchat"))
	b.WriteString("\n\n")
	b.WriteString(th.hintStyle().Render(IconPlus.Glyph() + " New chat (ctrl+n)"))
	b.WriteString("\n")
	b.WriteString(s.search.View())
	b.WriteString("\n\n")

	visible := Filter(sessions, s.search.Value())
	if len(visible) == 0 {
		b.WriteString(th.hintStyle().Render("No chats found"))
	}

	cursor := s.cursor
	if cursor >= len(visible) {
		cursor = len(visible) - 1
	}
	titleWidth := sidebarWidth - 6
	for i, sess := range visible {
		if sess.ID == s.renamingID {
			b.WriteString(s.rename.View())
			b.WriteString("\n")
			continue
		}

		marker := "  "
		if s.focused && i == cursor {
			marker = "› "
		}
		line := marker + truncateRunes(sess.Title, titleWidth)
		switch {
		case sess.ID == activeID:
			line = th.selectedStyle().Render(line)
		case sess.Pending():
			line = th.hintStyle().Render(line)
		}
		if sess.ID == s.menuID {
			line += " " + IconEllipsisVertical.Glyph()
		}
		b.WriteString(line)
		b.WriteString("\n")

		if sess.ID == s.menuID {
			for j, item := range menuItems {
				icon := IconPencil
				if item == "Delete" {
					icon = IconTrash
				}
				entry := fmt.Sprintf("    %s %s", icon.Glyph(), item)
				if j == s.menuCursor {
					entry = th.accentStyle().Render(entry)
				}
				b.WriteString(entry)
				b.WriteString("\n")
			}
		}
	}

	if s.focused {
		b.WriteString("\n")
		b.WriteString(th.hintStyle().Render(lipgloss.NewStyle().Width(sidebarWidth - 2).Render(
			"enter open · / search · m menu · r rename · d delete")))
	}
	return style.Render(b.String())
}
