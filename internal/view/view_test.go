package view

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dit/internal/morse"
)

func TestHTMLEncodedRow(t *testing.T) {
	got := HTML(morse.Render("a"))
	want := `<div class="row"><b>a</b> : <span class="morseLine"><span class="dot"></span><span class="dash"></span></span></div>`
	assert.Equal(t, want, got)
}

func TestHTMLSpaceRow(t *testing.T) {
	got := HTML(morse.Render(" "))
	assert.Equal(t, `<div class="row"><span class="small">(space)</span><span class="word"></span></div>`, got)
	assert.NotContains(t, got, `class="dot"`)
	assert.NotContains(t, got, `class="dash"`)
}

func TestHTMLEscapesUnsupportedCharacters(t *testing.T) {
	cases := map[string]string{
		"<": "&lt;",
		">": "&gt;",
		"&": "&amp;",
	}
	for input, escaped := range cases {
		got := HTML(morse.Render(input))
		assert.Contains(t, got, "<b>"+escaped+"</b>")
		assert.Contains(t, got, "(not supported)")
		body := strings.TrimSuffix(strings.TrimPrefix(got, `<div class="row"><b>`), `</b> : <span class="small">(not supported)</span></div>`)
		assert.Equal(t, escaped, body)
	}
}

func TestHTMLInjectionAttempt(t *testing.T) {
	got := HTML(morse.Render("<script>"))
	assert.NotContains(t, got, "<script>")
	assert.Equal(t, 8, strings.Count(got, `<div class="row">`))
}

func TestHTMLEmpty(t *testing.T) {
	assert.Equal(t, "", HTML(morse.Render("")))
}

func TestHTMLGapBlock(t *testing.T) {
	tr := morse.Transcription{{Kind: morse.KindEncoded, Original: 'x', Symbols: []morse.Symbol{morse.Dot, morse.Gap}}}
	assert.Contains(t, HTML(tr), `<span class="dot"></span><span class="gap"></span>`)
}

func TestFragments(t *testing.T) {
	frags := Fragments(morse.Render("E #"))
	require.Len(t, frags, 3)

	assert.Equal(t, Fragment{Kind: "encoded", Label: "E", Code: ".", Blocks: []string{"dot"}}, frags[0])
	assert.Equal(t, Fragment{Kind: "space", Label: "(space)"}, frags[1])
	assert.Equal(t, Fragment{Kind: "unsupported", Label: "#"}, frags[2])

	data, err := json.Marshal(frags[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"unsupported","label":"#"}`, string(data))
}

func TestTerminalPlain(t *testing.T) {
	got := Terminal(morse.Render("So #"), false)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "S : ▪ ▪ ▪  ...", lines[0])
	assert.Equal(t, "o : ▬ ▬ ▬  ---", lines[1])
	assert.Equal(t, "(space)", lines[2])
	assert.Equal(t, "# : (not supported)", lines[3])
}

func TestTerminalQuotesControlRunes(t *testing.T) {
	for _, styled := range []bool{false, true} {
		got := Terminal(morse.Render("e\x1b[2J\a"), styled)
		assert.NotContains(t, got, "\x1b[2J")
		assert.NotContains(t, got, "\a")
		assert.Contains(t, got, `'\x1b'`)
		assert.Contains(t, got, `'\a'`)
	}

	lines := strings.Split(strings.TrimSuffix(Terminal(morse.Render("\x1b"), false), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, `'\x1b' : (not supported)`, lines[0])
}

func TestTerminalEmpty(t *testing.T) {
	assert.Equal(t, "", Terminal(nil, true))
}
