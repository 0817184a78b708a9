package plagiarism

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text, strips every rune that is neither a word
// character nor whitespace, and splits the remainder on whitespace runs.
// "don't" becomes "dont"; "foo_bar" survives intact.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case isWordRune(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, text)

	return strings.Fields(cleaned)
}

// isWordRune reports whether r is a Unicode word character: a letter,
// combining mark, decimal digit or connector punctuation such as '_'.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) ||
		unicode.IsDigit(r) ||
		unicode.IsMark(r) ||
		unicode.Is(unicode.Pc, r)
}

// lowerRunes lower-cases text one rune at a time so that rune offsets in
// the result line up with rune offsets in the input.
func lowerRunes(text string) string {
	return strings.Map(unicode.ToLower, text)
}
