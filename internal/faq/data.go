package faq

// AnswerMode classifies how a FAQ answer actually resolves the question,
// independent of its prose. Values mirror store.FAQAnswerMode verbatim so
// callers can convert by a plain string cast.
type AnswerMode string

const (
	ModeDirectText      AnswerMode = "DIRECT_TEXT"
	ModeLinkOut         AnswerMode = "LINK_OUT"
	ModePhoneEscalation AnswerMode = "PHONE_ESCALATION"
	ModePDFAttachment   AnswerMode = "PDF_ATTACHMENT"
	ModeVideo           AnswerMode = "VIDEO"
	ModePortalRedirect  AnswerMode = "PORTAL_REDIRECT"
)

// Candidate is one recognized question/answer pair.
type Candidate struct {
	QuestionText string
	AnswerText   string
	AnswerHTML   string
	AnswerMode   AnswerMode
}

// rawPair is what a recognizer produces before answer-mode classification.
type rawPair struct {
	questionText string
	answerText   string
	answerHTML   string
	anchorHrefs  []string
}
