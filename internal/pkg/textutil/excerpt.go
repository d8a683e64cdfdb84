package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// markdownLinkRegex matches [label](target) and keeps the label
	markdownLinkRegex = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	// markdownMarkerRegex matches emphasis, code and heading markers
	markdownMarkerRegex = regexp.MustCompile("(?m)(^#{1,6}\\s+|^>\\s?|[*_`~]+)")
	whitespaceRegex     = regexp.MustCompile(`\s+`)
)

// PlainText strips common markdown markup and collapses whitespace so a
// message body can be shown on a single line.
func PlainText(markdown string) string {
	text := markdownLinkRegex.ReplaceAllString(markdown, "$1")
	text = markdownMarkerRegex.ReplaceAllString(text, "")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Excerpt returns at most max runes of the plain text of markdown, cut at a
// word boundary when possible and suffixed with "..." when shortened.
func Excerpt(markdown string, max int) string {
	text := PlainText(markdown)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "..."
}
