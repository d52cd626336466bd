package corpus

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// stripMarkup returns the text content of s with HTML tags removed and
// whitespace collapsed. Input that fails to parse is returned unchanged.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
