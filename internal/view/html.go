// Package view maps a morse.Transcription onto display surfaces: HTML rows for
// the web UI, structured fragments for JSON clients, and plain or styled text
// for terminals.
package view

import (
	"strings"

	"dit/internal/morse"
)

const (
	spaceLabel       = "(space)"
	unsupportedLabel = "(not supported)"
)

// markupEscaper covers the characters that could open a tag or entity inside
// an element body.
var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeMarkup escapes &, < and > in s.
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}

// HTML renders one row per character using the web UI's class names.
func HTML(t morse.Transcription) string {
	var b strings.Builder
	for _, c := range t {
		writeRow(&b, c)
	}
	return b.String()
}

func writeRow(b *strings.Builder, c morse.CharacterRendering) {
	switch c.Kind {
	case morse.KindSpace:
		b.WriteString(`<div class="row"><span class="small">` + spaceLabel + `</span><span class="word"></span></div>`)
	case morse.KindUnsupported:
		b.WriteString(`<div class="row"><b>`)
		b.WriteString(EscapeMarkup(string(c.Original)))
		b.WriteString(`</b> : <span class="small">` + unsupportedLabel + `</span></div>`)
	default:
		b.WriteString(`<div class="row"><b>`)
		b.WriteString(EscapeMarkup(string(c.Original)))
		b.WriteString(`</b> : <span class="morseLine">`)
		for _, sym := range c.Symbols {
			b.WriteString(`<span class="`)
			b.WriteString(sym.String())
			b.WriteString(`"></span>`)
		}
		b.WriteString(`</span></div>`)
	}
}
