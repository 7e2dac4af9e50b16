package view

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"dit/internal/morse"
)

const (
	dotGlyph  = "▪"
	dashGlyph = "▬"
	gapGlyph  = " "
)

var (
	labelStyle       = lipgloss.NewStyle().Bold(true).Width(3)
	dotStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dashStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	unsupportedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// Terminal renders one line per character. When styled is false the output is
// plain text suitable for pipes and tests.
func Terminal(t morse.Transcription, styled bool) string {
	lines := make([]string, 0, len(t))
	for _, c := range t {
		lines = append(lines, terminalLine(c, styled))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func terminalLine(c morse.CharacterRendering, styled bool) string {
	switch c.Kind {
	case morse.KindSpace:
		return paint(unsupportedStyle, spaceLabel, styled)
	case morse.KindUnsupported:
		return paintLabel(c.Original, styled) + " : " + paint(unsupportedStyle, unsupportedLabel, styled)
	}

	blocks := make([]string, 0, len(c.Symbols))
	for _, sym := range c.Symbols {
		switch sym {
		case morse.Dot:
			blocks = append(blocks, paint(dotStyle, dotGlyph, styled))
		case morse.Dash:
			blocks = append(blocks, paint(dashStyle, dashGlyph, styled))
		default:
			blocks = append(blocks, gapGlyph)
		}
	}
	return paintLabel(c.Original, styled) + " : " + strings.Join(blocks, " ") + "  " + c.Code()
}

// paintLabel drops the fixed label width for quoted runes, which lipgloss
// would otherwise wrap.
func paintLabel(r rune, styled bool) string {
	label := terminalLabel(r)
	style := labelStyle
	if lipgloss.Width(label) > labelStyle.GetWidth() {
		style = style.UnsetWidth()
	}
	return paint(style, label, styled)
}

// terminalLabel quotes runes a terminal would interpret, such as ESC, so input
// text cannot emit control sequences.
func terminalLabel(r rune) string {
	if unicode.IsPrint(r) {
		return string(r)
	}
	return strconv.QuoteRune(r)
}

func paint(style lipgloss.Style, s string, styled bool) string {
	if !styled {
		return s
	}
	return style.Render(s)
}
