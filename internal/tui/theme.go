package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the color scheme for the chat interface.
type Theme struct {
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Border    lipgloss.Color
	Selection lipgloss.Color
}

// DefaultTheme provides default colors.
var DefaultTheme = Theme{
	Accent:    lipgloss.Color("#5CC8EF"), // light blue
	Text:      lipgloss.Color("#D0D0D0"), // light gray
	Muted:     lipgloss.Color("#6C6C6C"), // dim gray
	Error:     lipgloss.Color("#FF005F"), // red
	Success:   lipgloss.Color("#00D787"), // green
	Border:    lipgloss.Color("#3A3A3A"), // dark gray
	Selection: lipgloss.Color("#7D56F4"), // violet
}

func (t Theme) accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
}

func (t Theme) textStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Text)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted).Italic(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success)
}

func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Selection).Bold(true)
}

func (t Theme) userBubbleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
}

func (t Theme) cardStyle(highlighted bool) lipgloss.Style {
	border := t.Border
	if highlighted {
		border = t.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func (t Theme) paneStyle(focused bool) lipgloss.Style {
	border := t.Border
	if focused {
		border = t.Accent
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(border)
}
