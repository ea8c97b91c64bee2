package tui

import "strings"

// IconType identifies a glyph used in the interface.
type IconType int

const (
	IconLogo IconType = iota
	IconHome
	IconChat
	IconHistory
	IconFile
	IconFolder
	IconShare
	IconDatabase
	IconHelp
	IconSettings
	IconUser
	IconSparkles
	IconPaperclip
	IconChevronDown
	IconSearch
	IconUserPlus
	IconPlus
	IconEnvelope
	IconComment
	IconCode
	IconArrowUp
	IconChevronLeft
	IconEllipsisVertical
	IconPencil
	IconTrash
)

// unknownGlyph is rendered for icon types without a glyph.
const unknownGlyph = "?"

var iconGlyphs = map[IconType]string{
	IconLogo:             "◈",
	IconHome:             "⌂",
	IconChat:             "◧",
	IconHistory:          "↺",
	IconFile:             "▤",
	IconFolder:           "▥",
	IconShare:            "⇪",
	IconDatabase:         "⛁",
	IconHelp:             "ⓘ",
	IconSettings:         "⚙",
	IconUser:             "☺",
	IconSparkles:         "✦",
	IconPaperclip:        "⎘",
	IconChevronDown:      "⌄",
	IconSearch:           "⌕",
	IconUserPlus:         "⊕",
	IconPlus:             "+",
	IconEnvelope:         "✉",
	IconComment:          "❝",
	IconCode:             "⟨⟩",
	IconArrowUp:          "↑",
	IconChevronLeft:      "‹",
	IconEllipsisVertical: "⋮",
	IconPencil:           "✎",
	IconTrash:            "✗",
}

var iconNames = map[IconType]string{
	IconLogo:             "logo",
	IconHome:             "home",
	IconChat:             "chat",
	IconHistory:          "history",
	IconFile:             "file",
	IconFolder:           "folder",
	IconShare:            "share",
	IconDatabase:         "database",
	IconHelp:             "help",
	IconSettings:         "settings",
	IconUser:             "user",
	IconSparkles:         "sparkles",
	IconPaperclip:        "paperclip",
	IconChevronDown:      "chevron-down",
	IconSearch:           "search",
	IconUserPlus:         "user-plus",
	IconPlus:             "plus",
	IconEnvelope:         "envelope",
	IconComment:          "comment",
	IconCode:             "code",
	IconArrowUp:          "arrow-up",
	IconChevronLeft:      "chevron-left",
	IconEllipsisVertical: "ellipsis-vertical",
	IconPencil:           "pencil",
	IconTrash:            "trash",
}

// Glyph returns the terminal glyph for t.
func (t IconType) Glyph() string {
	if g, ok := iconGlyphs[t]; ok {
		return g
	}
	return unknownGlyph
}

func (t IconType) String() string {
	if n, ok := iconNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseIconType looks up an icon by name, ignoring case and treating "_" like "-".
func ParseIconType(name string) (IconType, bool) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	for t, n := range iconNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}
