package faq

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// recognizer is one strategy in the cascade: try(dom) -> candidates. The
// Extractor runs recognizers in order and stops at the first one that
// returns anything, per spec.
type recognizer func(doc *html.Node) []rawPair

// cascade is the ordered strategy list. Order matters: a page offering more
// than one structure is handled by whichever strategy is tried first, not
// by merging results from all of them.
var cascade = []recognizer{
	disclosureWidgets,
	definitionLists,
	cardAccordions,
	paragraphPattern,
}

// disclosureWidgets recognizes <details><summary>...</summary>...</details>.
func disclosureWidgets(doc *html.Node) []rawPair {
	var pairs []rawPair
	goquery.NewDocumentFromNode(doc).Find("details").Each(func(_ int, s *goquery.Selection) {
		summary := s.Find("summary").First()
		if summary.Length() == 0 {
			return
		}
		question := strings.TrimSpace(summary.Text())
		if question == "" {
			return
		}

		clone := cloneNode(s.Get(0))
		cloneSel := goquery.NewDocumentFromNode(clone)
		cloneSel.Find("summary").Remove()

		pairs = append(pairs, toRawPair(question, cloneSel))
	})
	return pairs
}

// definitionLists recognizes <dl><dt>...</dt><dd>...</dd></dl> pairs.
func definitionLists(doc *html.Node) []rawPair {
	var pairs []rawPair
	goquery.NewDocumentFromNode(doc).Find("dl").Each(func(_ int, dl *goquery.Selection) {
		for n := dl.Get(0).FirstChild; n != nil; n = n.NextSibling {
			if n.Type != html.ElementNode || n.Data != "dt" {
				continue
			}
			dd := nextElementSibling(n)
			if dd == nil || dd.Data != "dd" {
				continue
			}
			question := strings.TrimSpace(goquery.NewDocumentFromNode(n).Text())
			if question == "" {
				continue
			}
			answerSel := goquery.NewDocumentFromNode(cloneNode(dd))
			pairs = append(pairs, toRawPair(question, answerSel))
		}
	})
	return pairs
}

// cardAccordions recognizes Bootstrap-style ".accordion-card" blocks.
func cardAccordions(doc *html.Node) []rawPair {
	var pairs []rawPair
	goquery.NewDocumentFromNode(doc).Find(".accordion-card").Each(func(_ int, s *goquery.Selection) {
		header := s.Find(".card-header").First()
		if header.Length() == 0 {
			return
		}
		questionSel := header.Find("button").First()
		if questionSel.Length() == 0 {
			questionSel = header
		}
		question := strings.TrimSpace(questionSel.Text())
		if question == "" {
			return
		}

		body := s.Find(".card-body").First()
		if body.Length() == 0 {
			return
		}
		answerSel := goquery.NewDocumentFromNode(cloneNode(body.Get(0)))
		pairs = append(pairs, toRawPair(question, answerSel))
	})
	return pairs
}

// paragraphPattern recognizes the ".faq_ques_text" / ".faq-ans" convention.
func paragraphPattern(doc *html.Node) []rawPair {
	var pairs []rawPair
	goquery.NewDocumentFromNode(doc).Find(".faq_ques_text").Each(func(_ int, s *goquery.Selection) {
		question := strings.TrimSpace(s.Text())
		if question == "" {
			return
		}
		answer := s.Parent().Find(".faq-ans").First()
		if answer.Length() == 0 {
			return
		}
		answerSel := goquery.NewDocumentFromNode(cloneNode(answer.Get(0)))
		pairs = append(pairs, toRawPair(question, answerSel))
	})
	return pairs
}

// toRawPair serializes answerSel's inner HTML/text and records its anchor
// hrefs for downstream answer-mode classification.
func toRawPair(question string, answerSel *goquery.Selection) rawPair {
	answerHTML, _ := answerSel.Html()
	answerText := strings.TrimSpace(answerSel.Text())

	var hrefs []string
	answerSel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})

	return rawPair{
		questionText: question,
		answerText:   answerText,
		answerHTML:   strings.TrimSpace(answerHTML),
		anchorHrefs:  hrefs,
	}
}

// nextElementSibling skips text/comment nodes to find the next element.
func nextElementSibling(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// cloneNode deep-copies n as a detached subtree so recognizers can mutate
// (e.g. remove the summary from a details block) without disturbing the
// document the Engine still needs for link extraction.
func cloneNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	clone := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(cloneNode(c))
	}
	return clone
}
