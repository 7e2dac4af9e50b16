package morse

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Symbol is one element of a character's code.
type Symbol int

const (
	// Gap stands in for any code character other than a dot or a dash. The
	// fixed table never produces one.
	Gap Symbol = iota
	Dot
	Dash
)

func (s Symbol) String() string {
	switch s {
	case Dot:
		return "dot"
	case Dash:
		return "dash"
	default:
		return "gap"
	}
}

// Kind classifies a rendered character.
type Kind int

const (
	KindEncoded Kind = iota
	KindSpace
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindSpace:
		return "space"
	case KindUnsupported:
		return "unsupported"
	default:
		return "encoded"
	}
}

// CharacterRendering describes one input character. Original keeps the
// caller's case; Symbols is only populated for KindEncoded.
type CharacterRendering struct {
	Kind     Kind
	Original rune
	Symbols  []Symbol
}

// Code reassembles the dot/dash string for an encoded character.
func (c CharacterRendering) Code() string {
	if c.Kind != KindEncoded {
		return ""
	}
	buf := make([]byte, 0, len(c.Symbols))
	for _, sym := range c.Symbols {
		switch sym {
		case Dot:
			buf = append(buf, '.')
		case Dash:
			buf = append(buf, '-')
		default:
			buf = append(buf, ' ')
		}
	}
	return string(buf)
}

// Transcription is the ordered per-character breakdown of a text.
type Transcription []CharacterRendering

// Counts reports how many characters fell into each kind.
func (t Transcription) Counts() (encoded, spaces, unsupported int) {
	for _, c := range t {
		switch c.Kind {
		case KindEncoded:
			encoded++
		case KindSpace:
			spaces++
		case KindUnsupported:
			unsupported++
		}
	}
	return encoded, spaces, unsupported
}

// Render transcodes text rune by rune. Every rune yields exactly one entry and
// input order is preserved.
func Render(text string) Transcription {
	if text == "" {
		return Transcription{}
	}
	caser := cases.Upper(language.Und)
	out := make(Transcription, 0, len(text))
	for _, r := range text {
		if r == ' ' {
			out = append(out, CharacterRendering{Kind: KindSpace, Original: r})
			continue
		}
		code, ok := lookup(caser, r)
		if !ok {
			out = append(out, CharacterRendering{Kind: KindUnsupported, Original: r})
			continue
		}
		out = append(out, CharacterRendering{
			Kind:     KindEncoded,
			Original: r,
			Symbols:  decompose(code),
		})
	}
	return out
}

func decompose(code string) []Symbol {
	symbols := make([]Symbol, 0, len(code))
	for _, c := range code {
		switch c {
		case '.':
			symbols = append(symbols, Dot)
		case '-':
			symbols = append(symbols, Dash)
		default:
			symbols = append(symbols, Gap)
		}
	}
	return symbols
}
