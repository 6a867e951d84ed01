package engine

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

type EngineErrorCause string

const (
	ErrCauseStoreFailure    EngineErrorCause = "store operation failed"
	ErrCauseConfigInvalid   EngineErrorCause = "invalid engine configuration"
	ErrCauseContentHandling EngineErrorCause = "content handling failed"
)

// EngineError wraps a non-Store dispatch failure so it carries a
// metadata.ErrorCause alongside the Document.Status it becomes. It never
// propagates out of processOne as a failure.ClassifiedError in its own
// right — Store I/O errors are what stop Run's loop (see asStoreError) — it
// exists purely to give recordContentError a cause to report.
type EngineError struct {
	Message   string
	Retryable bool
	Cause     EngineErrorCause
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error: %s: %s", e.Cause, e.Message)
}

func (e *EngineError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func mapEngineErrorToMetadataCause(err *EngineError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseStoreFailure:
		return metadata.CauseStorageFailure
	case ErrCauseConfigInvalid:
		return metadata.CauseInvariantViolation
	case ErrCauseContentHandling:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
