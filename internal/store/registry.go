package store

import (
	"time"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

// RegisterExternalURL records the first-seen timestamp of an out-of-domain
// URL. A URL already present is left untouched (INSERT OR IGNORE).
func (s *Store) RegisterExternalURL(url string) failure.ClassifiedError {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO external_links_global (url, first_seen_at) VALUES (?, ?)`,
		url, fmtTime(time.Time{}),
	)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "RegisterExternalURL", storeErr)
		return storeErr
	}
	return nil
}

// RegisterExternalDomain records the first-seen timestamp of an out-of-domain
// host. A domain already present is left untouched (INSERT OR IGNORE).
func (s *Store) RegisterExternalDomain(domain string) failure.ClassifiedError {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO external_domains_global (domain, first_seen_at) VALUES (?, ?)`,
		domain, fmtTime(time.Time{}),
	)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "RegisterExternalDomain", storeErr)
		return storeErr
	}
	return nil
}
