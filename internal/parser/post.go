package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/BoardPulse/internal/types"
)

// Post page selectors.
const (
	mainContentSelector = "#main-content"
	// Header lines (author, board, title, time) and the push/comment block.
	noiseSelector = "div.article-metaline, div.article-metaline-right, div.push"
)

// originMarker opens the "sent from" attribution lines at the end of a post.
const originMarker = "※"

// ExtractBody returns the sanitized main text of a post page. The header
// and comment blocks are removed before any text is read; remaining text
// nodes are visited in document order and fragments that start with the
// origin marker or "--", or that echo the post link, are dropped.
// The noise blocks are removed from doc itself.
func ExtractBody(doc *goquery.Document, link string) (string, error) {
	if doc == nil {
		return "", &types.ParseError{URL: link, Selector: mainContentSelector, Err: errNilDocument}
	}

	content := doc.Find(mainContentSelector).First()
	if content.Length() == 0 {
		return "", &types.ParseError{URL: link, Selector: mainContentSelector, Err: types.ErrNoMainContent}
	}
	content.Find(noiseSelector).Remove()

	var out strings.Builder
	for _, node := range htmlquery.Find(content.Get(0), ".//text()") {
		if inScript(node) {
			continue
		}
		fragment := strings.TrimSpace(node.Data)
		if fragment == "" || skipFragment(fragment, link) {
			continue
		}
		if s := Sanitize(fragment); s != "" {
			out.WriteString(s)
		}
	}

	return out.String(), nil
}

func skipFragment(fragment, link string) bool {
	if strings.HasPrefix(fragment, originMarker) || strings.HasPrefix(fragment, signatureSeparator) {
		return true
	}
	return link != "" && strings.Contains(fragment, link)
}

func inScript(n *html.Node) bool {
	p := n.Parent
	return p != nil && p.Type == html.ElementNode && (p.Data == "script" || p.Data == "style")
}
