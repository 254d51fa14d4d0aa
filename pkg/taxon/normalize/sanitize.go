package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup reduces an HTML fragment to its visible text. Plain text is
// returned unchanged. Some exports carry rich-text descriptions; the indices
// only ever need the words.
func StripMarkup(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	tok := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(tok.Text())
			b.WriteByte(' ')
		}
	}
}
