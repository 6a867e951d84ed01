package extractor

import "golang.org/x/net/html"

// ExtractionResult holds the extraction outcome.
// DocumentRoot is the original parsed HTML document.
// ContentNode is the extracted meaningful content node (semantic container).
type ExtractionResult struct {
	DocumentRoot *html.Node
	ContentNode  *html.Node
}

// ExtractParam tunes the heuristic fallback scorer. Both fields are ratios
// in (0, 1]; callers that don't need non-default tuning should use
// DefaultExtractParam.
type ExtractParam struct {
	// LinkDensityThreshold is the max fraction of a candidate's text that
	// may sit inside <a> tags before it's penalized as nav/chrome.
	LinkDensityThreshold float64
	// BodySpecificityBias is how close a child container's score must get
	// to <body>'s score (as a fraction of it) before it's preferred over
	// <body> itself.
	BodySpecificityBias float64
}

// DefaultExtractParam matches the thresholds the scorer was tuned against
// before these became configurable.
func DefaultExtractParam() ExtractParam {
	return ExtractParam{
		LinkDensityThreshold: 0.5,
		BodySpecificityBias:  0.6,
	}
}
