package store

import (
	"fmt"

	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseOpenFailure   StoreErrorCause = "failed to open database"
	ErrCauseSchemaFailure StoreErrorCause = "failed to apply schema"
	ErrCauseWriteFailure  StoreErrorCause = "write failed"
	ErrCauseReadFailure   StoreErrorCause = "read failed"
	ErrCauseEncodeFailure StoreErrorCause = "failed to encode column"
	ErrCauseDecodeFailure StoreErrorCause = "failed to decode column"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %s", e.Cause, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapStoreErrorToMetadataCause maps store-local error semantics to the
// canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used to derive
// control-flow decisions.
func mapStoreErrorToMetadataCause(err *StoreError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseOpenFailure, ErrCauseSchemaFailure, ErrCauseWriteFailure, ErrCauseReadFailure:
		return metadata.CauseStorageFailure
	case ErrCauseEncodeFailure, ErrCauseDecodeFailure:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
