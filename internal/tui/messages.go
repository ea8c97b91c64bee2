package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raphaelgruber/docchat-go/internal/models"
)

// maxExcerptLen is the maximum number of runes shown per source excerpt.
const maxExcerptLen = 160

// errorPrefix marks assistant messages that report a failed operation.
const errorPrefix = "Error:"

// renderMessage draws a single chat entry for a pane of the given width.
// spin is the current spinner frame, used for placeholders.
func renderMessage(msg models.Message, width int, spin string, th Theme) string {
	if width < 20 {
		width = 20
	}

	if msg.Sender == models.SenderUser {
		bubble := th.userBubbleStyle().Width(bubbleWidth(msg.Text, width)).Render(msg.Text)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble)
	}

	if msg.IsPlaceholder() {
		if msg.Text == models.ThinkingText {
			return th.accentStyle().Render(spin)
		}
		return th.accentStyle().Render(spin) + " " + th.hintStyle().Render(msg.Text)
	}

	body := lipgloss.NewStyle().Width(width - 2)
	var b strings.Builder
	if strings.HasPrefix(msg.Text, errorPrefix) {
		b.WriteString(body.Inherit(th.errorStyle()).Render(msg.Text))
	} else {
		b.WriteString(body.Inherit(th.textStyle()).Render(msg.Text))
	}

	if len(msg.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(renderSources(msg.Sources, width, th))
	}
	return b.String()
}

// renderSources lists citations as "[p. <page>] <excerpt>".
func renderSources(sources []models.Source, width int, th Theme) string {
	var b strings.Builder
	b.WriteString(th.hintStyle().Render("Sources:"))
	line := lipgloss.NewStyle().Width(width - 2).Foreground(th.Muted)
	for _, s := range sources {
		b.WriteString("\n")
		b.WriteString(line.Render(formatSource(s)))
	}
	return b.String()
}

func formatSource(s models.Source) string {
	page := string(s.Page)
	if page == "" {
		page = "?"
	}
	excerpt := strings.Join(strings.Fields(s.Content), " ")
	return fmt.Sprintf("[p. %s] %s", page, truncateRunes(excerpt, maxExcerptLen))
}

// renderConversation draws all messages of a session, oldest first.
func renderConversation(msgs []models.Message, width int, spin string, th Theme) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, renderMessage(m, width, spin, th))
	}
	return strings.Join(parts, "\n\n")
}

// bubbleWidth sizes a user bubble to its text, capped at three quarters of the pane.
func bubbleWidth(text string, width int) int {
	maxWidth := width * 3 / 4
	longest := 0
	for _, line := range strings.Split(text, "\n") {
		if w := lipgloss.Width(line); w > longest {
			longest = w
		}
	}
	// Padding on both sides.
	longest += 2
	if longest > maxWidth {
		return maxWidth
	}
	return longest
}

// truncateRunes shortens s to maxLen runes, adding "..." if truncated.
func truncateRunes(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
