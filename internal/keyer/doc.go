// Package keyer turns accepted text into a transmitted Morse line.
//
// It owns the request-side rules shared by the daemon and CLI: text
// normalization, words-per-minute clamping, and the single-line code form
// ("... --- ..." with " / " between words). Transmitters deliver that line;
// the daemon ships a logging transmitter and an ntfy-backed one, composed with
// Multi.
package keyer
