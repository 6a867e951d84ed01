package store

import (
	"encoding/json"
	"strconv"
	"time"
)

type DocumentStatus string

const (
	StatusCrawled          DocumentStatus = "CRAWLED"
	StatusBlockedByRobots  DocumentStatus = "BLOCKED_BY_ROBOTS"
	StatusSkippedByPolicy  DocumentStatus = "SKIPPED_BY_POLICY"
	StatusUnsupportedType  DocumentStatus = "UNSUPPORTED_TYPE"
	StatusFetchError       DocumentStatus = "FETCH_ERROR"
	StatusProcessingError  DocumentStatus = "PROCESSING_ERROR"
	StatusVideoUnavailable DocumentStatus = "VIDEO_UNAVAILABLE"
	StatusError            DocumentStatus = "ERROR"
)

// StatusHTTP formats the HTTP_<code> terminal status for a non-2xx response.
func StatusHTTP(code int) DocumentStatus {
	return DocumentStatus("HTTP_" + strconv.Itoa(code))
}

// ArtifactPaths is the known-keys value type backing documents.local_artifact_paths.
type ArtifactPaths struct {
	HTML    string `json:"html,omitempty"`
	Markdown string `json:"md,omitempty"`
	PDF     string `json:"pdf,omitempty"`
	PDFText string `json:"pdf_text,omitempty"`
	Media   string `json:"media,omitempty"`
}

func (p ArtifactPaths) encode() (string, *StoreError) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", &StoreError{Message: err.Error(), Cause: ErrCauseEncodeFailure}
	}
	return string(raw), nil
}

func decodeArtifactPaths(raw string) (ArtifactPaths, *StoreError) {
	var p ArtifactPaths
	if raw == "" {
		return p, nil
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ArtifactPaths{}, &StoreError{Message: err.Error(), Cause: ErrCauseDecodeFailure}
	}
	return p, nil
}

// MetaTags is the known-keys value type backing documents.meta_tags.
type MetaTags struct {
	IsFAQPage bool `json:"is_faq_page,omitempty"`
}

func (m MetaTags) encode() (string, *StoreError) {
	raw, err := json.Marshal(m)
	if err != nil {
		return "", &StoreError{Message: err.Error(), Cause: ErrCauseEncodeFailure}
	}
	return string(raw), nil
}

func decodeMetaTags(raw string) (MetaTags, *StoreError) {
	var m MetaTags
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return MetaTags{}, &StoreError{Message: err.Error(), Cause: ErrCauseDecodeFailure}
	}
	return m, nil
}

// Document mirrors one row of the documents table.
type Document struct {
	URL                string
	CanonicalURL       string
	Status             DocumentStatus
	DepthFromSeed      int
	URLPath            string
	ContentType        string
	Title              string
	ExtractedText      string
	LocalArtifactPaths ArtifactPaths
	CrawledAt          time.Time
	ErrorMessage       string
	MetaTags           MetaTags
}

type FAQAnswerMode string

const (
	AnswerDirectText      FAQAnswerMode = "DIRECT_TEXT"
	AnswerLinkOut         FAQAnswerMode = "LINK_OUT"
	AnswerPhoneEscalation FAQAnswerMode = "PHONE_ESCALATION"
	AnswerPDFAttachment   FAQAnswerMode = "PDF_ATTACHMENT"
	AnswerVideo           FAQAnswerMode = "VIDEO"
	AnswerPortalRedirect  FAQAnswerMode = "PORTAL_REDIRECT"
)

type FAQItem struct {
	DocumentURL       string
	QuestionText      string
	AnswerText        string
	AnswerRawHTML     string
	AnswerMode        FAQAnswerMode
	LinkDepthToAnswer int
}

type LinkEdge struct {
	ParentURL         string
	ChildURL          string
	AnchorText        string
	IsExternal        bool
	CanonicalChildURL string
}

type AssetType string

const (
	AssetPDF   AssetType = "pdf"
	AssetVideo AssetType = "video"
	AssetAudio AssetType = "audio"
)

type Asset struct {
	AssetURL      string
	SourcePageURL string
	AssetType     AssetType
	LocalPath     string
}

type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueProcessing QueueStatus = "processing"
	QueueCompleted  QueueStatus = "completed"
	QueueFailed     QueueStatus = "failed"
)

// QueueItem mirrors one row of the crawl_queue table.
type QueueItem struct {
	URL          string
	Depth        int
	ParentURL    string
	Status       QueueStatus
	AddedAt      time.Time
	Priority     int
	AttemptCount int
}
