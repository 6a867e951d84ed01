package store

import (
	"database/sql"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

// QueueURL adds url to the crawl_queue if it isn't already known there
// (INSERT OR IGNORE on the primary key; a duplicate enqueue is a no-op).
func (s *Store) QueueURL(url string, depth int, parentURL string, priority int) failure.ClassifiedError {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO crawl_queue (url, depth, parent_url, status, added_at, priority, attempt_count)
		 VALUES (?, ?, ?, 'pending', ?, ?, 0)`,
		url, depth, nullableString(parentURL), fmtTime(time.Time{}), priority,
	)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "QueueURL", storeErr)
		return storeErr
	}
	return nil
}

// NextPending returns the oldest highest-priority `pending` queue row, or
// ok=false if the queue has none. It does not itself mark the row
// `processing` — callers do that via UpdateQueueStatus once they commit to
// working on it.
func (s *Store) NextPending() (QueueItem, bool, failure.ClassifiedError) {
	row := s.db.QueryRow(`
		SELECT url, depth, parent_url, status, added_at, priority, attempt_count
		FROM crawl_queue
		WHERE status = 'pending'
		ORDER BY priority DESC, added_at ASC
		LIMIT 1
	`)

	var (
		item            QueueItem
		status, addedAt string
		parentURL       sql.NullString
	)
	err := row.Scan(&item.URL, &item.Depth, &parentURL, &status, &addedAt, &item.Priority, &item.AttemptCount)
	if err == sql.ErrNoRows {
		return QueueItem{}, false, nil
	}
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "NextPending", storeErr)
		return QueueItem{}, false, storeErr
	}

	item.ParentURL = parentURL.String
	item.Status = QueueStatus(status)
	if parsed, parseErr := time.Parse(time.RFC3339Nano, addedAt); parseErr == nil {
		item.AddedAt = parsed
	}
	return item, true, nil
}

// UpdateQueueStatus transitions url's queue row to status.
func (s *Store) UpdateQueueStatus(url string, status QueueStatus) failure.ClassifiedError {
	_, err := s.db.Exec(`UPDATE crawl_queue SET status = ? WHERE url = ?`, string(status), url)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "UpdateQueueStatus", storeErr)
		return storeErr
	}
	return nil
}

// IsKnown reports whether url already has a Document row or a crawl_queue
// row, i.e. whether it has already been admitted once this crawl (or a
// prior, resumed one).
func (s *Store) IsKnown(url string) (bool, failure.ClassifiedError) {
	var exists int
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM documents WHERE url = ?)
		    OR EXISTS(SELECT 1 FROM crawl_queue WHERE url = ?)
	`, url, url).Scan(&exists)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "IsKnown", storeErr)
		return false, storeErr
	}
	return exists != 0, nil
}

// QueueCounts returns the number of crawl_queue rows per status.
func (s *Store) QueueCounts() (map[QueueStatus]int, failure.ClassifiedError) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM crawl_queue GROUP BY status`)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "QueueCounts", storeErr)
		return nil, storeErr
	}
	defer rows.Close()

	counts := make(map[QueueStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
			recordStoreError(s.metadataSink, "QueueCounts", storeErr)
			return nil, storeErr
		}
		counts[QueueStatus(status)] = count
	}
	return counts, nil
}
