package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Agents paste inquiries straight out of webmail and marketplace consoles,
// which sometimes carries markup along. markupPattern decides whether a
// paste needs stripping.
var (
	markupPattern     = regexp.MustCompile(`(?i)<\s*(html|body|div|p|br|span|table|td|tr|a|img)[\s>/]`)
	whitespacePattern = regexp.MustCompile(`[ \t]+`)
	blankLinePattern  = regexp.MustCompile(`\n{3,}`)
)

// Normalize prepares a pasted inquiry for persistence and retrieval: HTML is
// reduced to its text, runs of spaces collapse, and excess blank lines drop.
// Plain text passes through apart from trimming.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	if markupPattern.MatchString(text) {
		if stripped, ok := stripMarkup(text); ok {
			text = stripped
		}
	}

	text = whitespacePattern.ReplaceAllString(text, " ")
	text = blankLinePattern.ReplaceAllString(text, "\n\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func stripMarkup(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	doc.Find("script, style, head").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	// Keep block boundaries as line breaks before flattening to text.
	doc.Find("br, p, div, tr").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	return doc.Text(), true
}
