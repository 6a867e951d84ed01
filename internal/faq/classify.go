package faq

import (
	"regexp"
	"strings"
)

// phonePattern matches the common US-style phone formats ("1-800-555-0100",
// "(800) 555-0100", "800.555.0100") appearing in answer prose.
var phonePattern = regexp.MustCompile(`(\+?\d{1,2}[\s.-]?)?\(?\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}`)

var portalTokens = []string{"login", "log-in", "sign-in", "signin", "account", "portal", "my-account"}
var videoTokens = []string{"youtube.com", "youtu.be", "vimeo.com", "/video", ".mp4", "transcript"}

// classify assigns an AnswerMode to a rawPair. Predicates are checked in a
// fixed priority order; the first match wins, so a PDF link inside an
// otherwise link-heavy answer is still classified as an attachment rather
// than a generic link-out.
func classify(p rawPair) AnswerMode {
	lowerHTML := strings.ToLower(p.answerHTML)

	for _, href := range p.anchorHrefs {
		lowerHref := strings.ToLower(href)
		for _, tok := range portalTokens {
			if strings.Contains(lowerHref, tok) {
				return ModePortalRedirect
			}
		}
	}

	for _, href := range p.anchorHrefs {
		if strings.HasSuffix(strings.ToLower(href), ".pdf") {
			return ModePDFAttachment
		}
	}

	for _, tok := range videoTokens {
		if strings.Contains(lowerHTML, tok) {
			return ModeVideo
		}
	}
	for _, href := range p.anchorHrefs {
		lowerHref := strings.ToLower(href)
		for _, tok := range videoTokens {
			if strings.Contains(lowerHref, tok) {
				return ModeVideo
			}
		}
	}

	if phonePattern.MatchString(p.answerText) {
		return ModePhoneEscalation
	}

	if len(p.anchorHrefs) > 0 {
		return ModeLinkOut
	}

	return ModeDirectText
}
