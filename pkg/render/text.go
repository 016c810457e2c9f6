package render

import (
	"html"
	"path"
	"regexp"
	"strings"
)

var (
	reBlockEnd = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|h[1-6]|li|tr|pre|blockquote)>`)
	reDrop     = regexp.MustCompile(`(?is)<(script|style|head)\b.*?</(script|style|head)>`)
	reTag      = regexp.MustCompile(`(?s)<[^>]*>`)
	reBlank    = regexp.MustCompile(`\n{3,}`)
	reSpace    = regexp.MustCompile(`[ \t]+`)
)

// PlainText converts the text of a payload to plain text.
// HTML markup is removed, other formats are kept as they are.
func PlainText(name, s string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm":
		return stripHTML(s)
	}
	return strings.TrimSpace(s)
}

func stripHTML(s string) string {
	s = reDrop.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", " ")
	s = reBlockEnd.ReplaceAllString(s, "\n")
	s = reTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = reSpace.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = reBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
