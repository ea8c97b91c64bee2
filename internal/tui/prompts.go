package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// maxPrompts is how many suggestion cards the welcome view shows.
const maxPrompts = 4

// Prompt is a suggestion card on the welcome view.
type Prompt struct {
	Text string
	Icon IconType
}

// DefaultPrompts returns the built-in suggestion cards.
func DefaultPrompts() []Prompt {
	return []Prompt{
		{Text: "Explain the structure of the Indian judiciary.", Icon: IconComment},
		{Text: "Draft an email reply to a client rejecting a legal service offer, politely.", Icon: IconEnvelope},
		{Text: "Summarize the key features of the Indian Constitution.", Icon: IconComment},
		{Text: "Provide a one-paragraph summary of the Right to Education Act.", Icon: IconEnvelope},
	}
}

// promptFile is the YAML layout of a prompts file:
//
//	prompts:
//	  - text: Summarize this contract.
//	    icon: comment
type promptFile struct {
	Prompts []struct {
		Text string `yaml:"text"`
		Icon string `yaml:"icon"`
	} `yaml:"prompts"`
}

// LoadPrompts reads suggestion cards from a YAML file. An empty path yields DefaultPrompts.
// Unknown icon names fall back to the comment icon; entries beyond four are dropped.
func LoadPrompts(path string) ([]Prompt, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var pf promptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}

	var prompts []Prompt
	for _, p := range pf.Prompts {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		icon, ok := ParseIconType(p.Icon)
		if !ok {
			icon = IconComment
		}
		prompts = append(prompts, Prompt{Text: text, Icon: icon})
		if len(prompts) == maxPrompts {
			break
		}
	}
	if len(prompts) == 0 {
		return nil, errors.New("prompts file has no prompts")
	}
	return prompts, nil
}

// renderWelcome draws the greeting and the numbered suggestion cards.
// highlighted is the index of the selected card, or -1.
func renderWelcome(prompts []Prompt, highlighted, width int, th Theme) string {
	var b strings.Builder

	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	b.WriteString(center.Render(th.accentStyle().Render(IconLogo.Glyph())))
	b.WriteString("\n\n")
	b.WriteString(center.Render(th.textStyle().Render("Hello!")))
	b.WriteString("\n")
	b.WriteString(center.Render("How Can I " + th.accentStyle().Render("Assist You Today?")))
	b.WriteString("\n\n")
	b.WriteString(th.hintStyle().Render("GET STARTED WITH AN EXAMPLE BELOW"))
	b.WriteString("\n")

	cardWidth := width - 4
	if cardWidth < 10 {
		cardWidth = 10
	}
	for i, p := range prompts {
		label := th.hintStyle().Render("alt+" + strconv.Itoa(i+1))
		body := fmt.Sprintf("%s %s  %s", p.Icon.Glyph(), p.Text, label)
		b.WriteString(th.cardStyle(i == highlighted).Width(cardWidth).Render(body))
		b.WriteString("\n")
	}
	return b.String()
}
