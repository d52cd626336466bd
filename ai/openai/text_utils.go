package openai

import (
	"strings"
	"unicode/utf8"
)

// maxArticleRunes caps the article text sent to the model.
const maxArticleRunes = 12000

// combineArticle joins title and body the way the prompt expects them:
// the title is only prefixed when present.
func combineArticle(title, body string) string {
	if strings.TrimSpace(title) == "" {
		return body
	}
	return title + " " + body
}

// scrubString collapses runs of whitespace, trims the result and truncates
// it to maxArticleRunes.
func scrubString(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxArticleRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxArticleRunes])
}
