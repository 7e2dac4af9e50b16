package morse

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var symbolTable = map[rune]string{
	'A': ".-",
	'B': "-...",
	'C': "-.-.",
	'D': "-..",
	'E': ".",
	'F': "..-.",
	'G': "--.",
	'H': "....",
	'I': "..",
	'J': ".---",
	'K': "-.-",
	'L': ".-..",
	'M': "--",
	'N': "-.",
	'O': "---",
	'P': ".--.",
	'Q': "--.-",
	'R': ".-.",
	'S': "...",
	'T': "-",
	'U': "..-",
	'V': "...-",
	'W': ".--",
	'X': "-..-",
	'Y': "-.--",
	'Z': "--..",
	'0': "-----",
	'1': ".----",
	'2': "..---",
	'3': "...--",
	'4': "....-",
	'5': ".....",
	'6': "-....",
	'7': "--...",
	'8': "---..",
	'9': "----.",
	'.': ".-.-.-",
	',': "--..--",
	'?': "..--..",
	'/': "-..-.",
	'-': "-....-",
	':': "---...",
	';': "-.-.-.",
	'@': ".--.-.",
}

// Lookup returns the Morse code for r. Matching is case-insensitive; the space
// character and anything outside the table report false.
func Lookup(r rune) (string, bool) {
	return lookup(cases.Upper(language.Und), r)
}

// lookup upper-cases r with caser before consulting the table. Characters whose
// upper-case form spans several runes (ß becomes SS) never match.
func lookup(caser cases.Caser, r rune) (string, bool) {
	if r == ' ' {
		return "", false
	}
	if code, ok := symbolTable[r]; ok {
		return code, true
	}
	upper := []rune(caser.String(string(r)))
	if len(upper) != 1 {
		return "", false
	}
	code, ok := symbolTable[upper[0]]
	return code, ok
}

// Supported returns every table key in ascending order.
func Supported() []rune {
	keys := make([]rune, 0, len(symbolTable))
	for r := range symbolTable {
		keys = append(keys, r)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
