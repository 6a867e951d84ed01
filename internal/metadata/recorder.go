package metadata

/*
Metadata Collected
- Fetch timestamps
- HTTP status codes
- Content hashes
- Crawl depth

Logging Goals
- Debuggable crawl behavior
- Post-run auditability
- Failure diagnostics

Structured logging is preferred.

Allowed:
- Primitive values
- Timestamps
- URLs (as values, not objects with behavior)
- Hashes
- Status codes
- Durations
- Identifiers (page ID, crawl ID)
*/

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// MetadataSink is the write-side contract every pipeline stage depends on to
// report what happened. It is purely observational: nothing on this
// interface returns a value a caller could use to make a decision.
type MetadataSink interface {
	RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int, crawlDepth int)
	RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, errorString string, attrs []Attribute)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
	RecordAssetFetch(assetUrl string, httpStatus int, duration time.Duration, retryCount int)
}

// CrawlFinalizer records the terminal summary of a completed crawl. It is
// invoked exactly once, after the crawl loop has stopped.
type CrawlFinalizer interface {
	RecordFinalCrawlStats(totalPages int, totalErrors int, totalAssets int, duration time.Duration)
}

// Recorder is the concrete MetadataSink/CrawlFinalizer backed by structured
// logging. It holds no crawl state and never influences control flow: every
// method here is a terminal sink for already-decided facts.
type Recorder struct {
	log zerolog.Logger
}

// NewRecorder builds a Recorder that tags every emitted record with the
// given worker/crawl identifier.
func NewRecorder(workerID string) Recorder {
	log := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("worker_id", workerID).
		Logger()
	return Recorder{log: log}
}

func (r *Recorder) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int, crawlDepth int) {
	r.log.Info().
		Str("event", "fetch").
		Str(string(AttrURL), fetchUrl).
		Int(string(AttrHTTPStatus), httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("retry_count", retryCount).
		Int(string(AttrDepth), crawlDepth).
		Msg("fetch recorded")
}

func (r *Recorder) RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, errorString string, attrs []Attribute) {
	event := r.log.Warn().
		Str("event", "error").
		Time(string(AttrTime), observedAt).
		Str("package", packageName).
		Str("action", action).
		Int("cause", int(cause)).
		Str("error", errorString)

	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}

	event.Msg("error recorded")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	event := r.log.Info().
		Str("event", "artifact").
		Str("kind", string(kind)).
		Str(string(AttrWritePath), path)

	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}

	event.Msg("artifact recorded")
}

func (r *Recorder) RecordAssetFetch(assetUrl string, httpStatus int, duration time.Duration, retryCount int) {
	r.log.Info().
		Str("event", "asset_fetch").
		Str(string(AttrAssetURL), assetUrl).
		Int(string(AttrHTTPStatus), httpStatus).
		Dur("duration", duration).
		Int("retry_count", retryCount).
		Msg("asset fetch recorded")
}

func (r *Recorder) RecordFinalCrawlStats(totalPages int, totalErrors int, totalAssets int, duration time.Duration) {
	r.log.Info().
		Str("event", "crawl_finished").
		Int("total_pages", totalPages).
		Int("total_errors", totalErrors).
		Int("total_assets", totalAssets).
		Dur("duration", duration).
		Msg("crawl finished")
}

// NoopSink discards everything. Embed it in a test sink to pick up the
// MetadataSink/CrawlFinalizer methods a test doesn't care about, and
// override only the ones it asserts against.
type NoopSink struct{}

func (NoopSink) RecordFetch(fetchUrl string, httpStatus int, duration time.Duration, contentType string, retryCount int, crawlDepth int) {
}
func (NoopSink) RecordError(observedAt time.Time, packageName string, action string, cause ErrorCause, errorString string, attrs []Attribute) {
}
func (NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}
func (NoopSink) RecordAssetFetch(assetUrl string, httpStatus int, duration time.Duration, retryCount int) {
}
func (NoopSink) RecordFinalCrawlStats(totalPages int, totalErrors int, totalAssets int, duration time.Duration) {
}
