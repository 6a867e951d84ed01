package store

import (
	"database/sql"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"github.com/rohmanhakim/sitemap-crawler/pkg/fileutil"
)

/*
Responsibilities
- Own the single embedded relational file the crawl persists to
- Apply schema/migrations idempotently on open
- Serialize every mutation through one writer connection
- Resume a crawl left mid-flight by a prior process

Store knows nothing about:
- fetching
- extraction
- markdown rendering

It is a persistence boundary, not a pipeline stage.
*/

// Store is the embedded-SQLite-backed persistence boundary for a crawl. All
// mutation goes through db, whose pool is capped at one connection so SQLite's
// single-writer model is respected without external locking.
type Store struct {
	db           *sql.DB
	metadataSink metadata.MetadataSink
}

// Open creates (if needed) the parent directory of dbPath, opens the
// database, applies the schema, and resets any stale `processing` queue rows
// left behind by a prior, interrupted process.
func Open(dbPath string, maxAttempt int, sink metadata.MetadataSink) (Store, failure.ClassifiedError) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := fileutil.EnsureDir(dir); err != nil {
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseOpenFailure}
			recordStoreError(sink, "Open", storeErr)
			return Store{}, storeErr
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseOpenFailure}
		recordStoreError(sink, "Open", storeErr)
		return Store{}, storeErr
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseSchemaFailure}
		recordStoreError(sink, "Open", storeErr)
		return Store{}, storeErr
	}

	s := Store{db: db, metadataSink: sink}
	if err := s.sweepStaleProcessing(maxAttempt); err != nil {
		return Store{}, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// sweepStaleProcessing resets `processing` queue rows left by a prior
// process back to `pending`, incrementing attempt_count. The interrupted run
// counts as an attempt: rows whose next attempt would exceed maxAttempt
// (attempt_count + 1 >= maxAttempt) are marked `failed` instead, so a crash
// loop cannot re-queue the same URL forever.
func (s *Store) sweepStaleProcessing(maxAttempt int) failure.ClassifiedError {
	if maxAttempt <= 0 {
		maxAttempt = 1
	}

	if _, err := s.db.Exec(
		`UPDATE crawl_queue SET status = 'failed' WHERE status = 'processing' AND attempt_count + 1 >= ?`,
		maxAttempt,
	); err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "sweepStaleProcessing", storeErr)
		return storeErr
	}

	if _, err := s.db.Exec(
		`UPDATE crawl_queue SET status = 'pending', attempt_count = attempt_count + 1 WHERE status = 'processing'`,
	); err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "sweepStaleProcessing", storeErr)
		return storeErr
	}

	return nil
}

func recordStoreError(sink metadata.MetadataSink, action string, err *StoreError) {
	if sink == nil {
		return
	}
	sink.RecordError(
		time.Now(),
		"store",
		action,
		mapStoreErrorToMetadataCause(err),
		err.Error(),
		nil,
	)
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}
