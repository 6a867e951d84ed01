// Package htmlutil holds the small set of DOM operations shared by the
// Document Extractor and the FAQ Extractor: absolutized link discovery and
// chrome removal. Neither extractor owns its own copy of this logic.
package htmlutil

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Link is one absolutized, discovered hyperlink.
type Link struct {
	URL  string
	Text string
	Rel  string
}

// skippedHrefPrefixes are schemes that never name a crawlable page.
var skippedHrefPrefixes = []string{"javascript:", "mailto:", "tel:"}

// ExtractLinks walks every a[href] under doc and returns it as an absolute
// Link against base, in document order. Empty hrefs and the schemes in
// skippedHrefPrefixes are dropped; malformed hrefs are dropped silently
// (a broken href is not a crawlable URL either).
func ExtractLinks(doc *html.Node, base url.URL) []Link {
	if doc == nil {
		return nil
	}

	sel := goquery.NewDocumentFromNode(doc)
	var links []Link

	sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		lower := strings.ToLower(href)
		for _, prefix := range skippedHrefPrefixes {
			if strings.HasPrefix(lower, prefix) {
				return
			}
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		absolute := base.ResolveReference(parsed)

		links = append(links, Link{
			URL:  absolute.String(),
			Text: strings.TrimSpace(s.Text()),
			Rel:  attrOrEmpty(s, "rel"),
		})
	})

	return links
}

// Clean decomposes script, style, noscript, iframe and svg subtrees in
// place. Callers that need to keep the original document should pass a
// clone.
func Clean(doc *html.Node) {
	if doc == nil {
		return
	}
	goquery.NewDocumentFromNode(doc).Find("script, style, noscript, iframe, svg").Remove()
}

// ExtractTitle returns the document's <title> text, falling back to the
// first <h1> if no title element is present, else "".
func ExtractTitle(doc *html.Node) string {
	if doc == nil {
		return ""
	}
	sel := goquery.NewDocumentFromNode(doc)

	if title := strings.TrimSpace(sel.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(sel.Find("h1").First().Text())
}

// blockTags are the elements ExtractText treats as paragraph boundaries.
var blockTags = map[string]bool{
	"p": true, "li": true, "pre": true, "blockquote": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// ExtractText concatenates the stripped text of node's subtree, one line
// per block-level element encountered. It never fails: a nil or empty
// subtree yields "".
func ExtractText(node *html.Node) string {
	if node == nil {
		return ""
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && blockTags[n.Data] {
			text := strings.TrimSpace(collectText(n))
			if text != "" {
				lines = append(lines, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return strings.Join(lines, "\n")
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attrOrEmpty(s *goquery.Selection, attr string) string {
	v, _ := s.Attr(attr)
	return v
}
