package features

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLength is the shortest token, in runes, kept by Tokenize.
const minTokenLength = 2

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// Tokenize lowercases text and splits it on word boundaries. A token is a
// maximal run of letters, digits and underscores at least two runes long.
// Stopwords are removed.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	tokens := make([]string, 0, len(text)/6)

	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = appendToken(tokens, text[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = appendToken(tokens, text[start:])
	}
	return tokens
}

func appendToken(tokens []string, tok string) []string {
	if utf8.RuneCountInString(tok) < minTokenLength || IsStopWord(tok) {
		return tokens
	}
	return append(tokens, tok)
}
