// Package faq recognizes question/answer pairs out of the structural
// conventions documentation sites commonly use for FAQ content, and
// classifies how each answer actually resolves (inline text, a link-out, a
// phone number, a PDF attachment, a video, or an account portal redirect).
package faq

import "golang.org/x/net/html"

// Extract runs the recognizer cascade against doc and returns the
// classified candidates from whichever strategy first produced any. A page
// using more than one FAQ convention at once is handled by the first
// matching strategy only, not by merging across strategies.
func Extract(doc *html.Node) []Candidate {
	if doc == nil {
		return nil
	}

	for _, strategy := range cascade {
		pairs := strategy(doc)
		if len(pairs) == 0 {
			continue
		}

		candidates := make([]Candidate, 0, len(pairs))
		for _, p := range pairs {
			candidates = append(candidates, Candidate{
				QuestionText: p.questionText,
				AnswerText:   p.answerText,
				AnswerHTML:   p.answerHTML,
				AnswerMode:   classify(p),
			})
		}
		return candidates
	}

	return nil
}
