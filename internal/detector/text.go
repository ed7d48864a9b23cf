package detector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"swipeboard-utils/internal/selectors"
)

var bodyBoilerplate = []string{
	"see ad details", "library id", "open dropdown", "sponsored · ",
}

// extractBodyText pulls the ad's body copy out of a card container. Elements
// styled to preserve whitespace are preferred because that is where creative
// text keeps its intended line breaks; <br> elements become newlines and
// runs of three or more newlines collapse to two.
func extractBodyText(el *goquery.Selection) string {
	filter := selectors.Filter{MinLen: 20, MaxLen: 1000, Excluded: bodyBoilerplate}

	candidates := []string{
		firstAccepted(el, `[style*="white-space"]`, filter),
		firstAccepted(el, `div[data-ad-preview="message"]`, filter),
		firstAccepted(el, `div[dir="auto"]`, filter),
		firstAccepted(el, `span[dir="auto"]`, filter),
	}

	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// firstAccepted returns the first matching element whose break-preserving
// text passes the filter.
func firstAccepted(el *goquery.Selection, selector string, filter selectors.Filter) string {
	var out string
	el.Find(selector).EachWithBreak(func(_ int, candidate *goquery.Selection) bool {
		text := normalizeNewlines(textWithBreaks(candidate))
		if v, ok := filter.Accept(text); ok {
			out = v
			return false
		}
		return true
	})
	return out
}

// textWithBreaks renders a selection's text content with <br> elements
// converted to newlines, walking the node tree directly since goquery's
// Text() drops them.
func textWithBreaks(el *goquery.Selection) string {
	var b strings.Builder
	for _, node := range el.Nodes {
		writeNodeText(&b, node)
	}
	return b.String()
}

func writeNodeText(b *strings.Builder, node *html.Node) {
	switch node.Type {
	case html.TextNode:
		b.WriteString(node.Data)
	case html.ElementNode:
		if node.Data == "br" {
			b.WriteString("\n")
			return
		}
		if node.Data == "script" || node.Data == "style" {
			return
		}
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		writeNodeText(b, child)
	}
}

// normalizeNewlines collapses 3+ consecutive newlines to 2.
func normalizeNewlines(s string) string {
	return reNewlines.ReplaceAllString(s, "\n\n")
}
