package keyer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"dit/internal/morse"
)

var (
	// ErrEmptyText reports text that is blank after normalization.
	ErrEmptyText = errors.New("empty text")
	// ErrBadSpeed reports a speed value that is not an integer.
	ErrBadSpeed = errors.New("bad speed")
	// ErrTooLong reports text over the configured rune limit.
	ErrTooLong = errors.New("text too long")
)

// NormalizeText drops carriage returns and trims surrounding whitespace.
func NormalizeText(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "\r", ""))
}

// PrepareText normalizes raw and enforces the emptiness and length rules.
// A maxRunes value of 0 disables the length check.
func PrepareText(raw string, maxRunes int) (string, error) {
	text := NormalizeText(raw)
	if text == "" {
		return "", ErrEmptyText
	}
	if maxRunes > 0 {
		if n := utf8.RuneCountInString(text); n > maxRunes {
			return "", fmt.Errorf("%w: %d runes, limit %d", ErrTooLong, n, maxRunes)
		}
	}
	return text, nil
}

// ClampSpeed bounds wpm to [lo, hi].
func ClampSpeed(wpm, lo, hi int) int {
	return max(lo, min(wpm, hi))
}

// ParseSpeed reads an integer words-per-minute value and clamps it.
func ParseSpeed(raw string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadSpeed, raw)
	}
	return ClampSpeed(n, lo, hi), nil
}

// Code renders text as a single Morse line. Letters are separated by one
// space and words by " / ". Characters without a code are skipped, and a word
// made only of such characters disappears.
func Code(text string) string {
	return CodeOf(morse.Render(text))
}

// CodeOf builds the Morse line from an existing transcription.
func CodeOf(t morse.Transcription) string {
	var words []string
	var letters []string
	flush := func() {
		if len(letters) > 0 {
			words = append(words, strings.Join(letters, " "))
			letters = letters[:0]
		}
	}
	for _, c := range t {
		switch {
		case c.Kind == morse.KindSpace, unicode.IsSpace(c.Original):
			flush()
		case c.Kind == morse.KindEncoded:
			letters = append(letters, c.Code())
		}
	}
	flush()
	return strings.Join(words, " / ")
}
