// Package morse transcodes text into International Morse Code.
//
// The symbol table is fixed: Latin letters, digits, and the punctuation marks
// . , ? / - : ; @. Lookup maps a single character to its code string and
// Render walks a whole text, producing one CharacterRendering per rune so
// callers can draw the result without re-deriving the classification.
//
// Everything here is pure. The table is built at init and never mutated, so
// Lookup and Render are safe to call from any goroutine on every keystroke.
package morse
