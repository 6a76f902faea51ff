package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Preview lengths in runes.
const (
	tablePreviewRunes   = 500
	genericPreviewRunes = 600
)

var skipTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
}

// textPieces returns every non-blank text node under sel, trimmed, in
// document order. Script and style bodies are skipped.
func textPieces(sel *goquery.Selection) []string {
	var pieces []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				pieces = append(pieces, s)
			}
			return
		case html.ElementNode:
			if skipTextElements[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return pieces
}

// cellText is the stripped text of a table cell with pieces glued together.
func cellText(sel *goquery.Selection) string {
	return strings.Join(textPieces(sel), "")
}

// PageText is the whole page text, stripped pieces joined by one space.
func PageText(doc *goquery.Document) string {
	return strings.Join(textPieces(doc.Selection), " ")
}

// Preview returns the first n runes of the page text.
func Preview(doc *goquery.Document, n int) string {
	return firstNRunes(PageText(doc), n)
}

func firstNRunes(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
