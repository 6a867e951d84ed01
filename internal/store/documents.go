package store

import (
	"database/sql"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

// UpsertDocument inserts or replaces the document row for doc.URL. Safe to
// call repeatedly for the same URL (e.g. the base-row write in step 7 of
// dispatch, followed by the enriched re-upsert in step 9).
func (s *Store) UpsertDocument(doc Document) failure.ClassifiedError {
	artifactPaths, err := doc.LocalArtifactPaths.encode()
	if err != nil {
		recordStoreError(s.metadataSink, "UpsertDocument", err)
		return err
	}
	metaTags, err := doc.MetaTags.encode()
	if err != nil {
		recordStoreError(s.metadataSink, "UpsertDocument", err)
		return err
	}

	_, execErr := s.db.Exec(`
		INSERT INTO documents (
			url, canonical_url, status, depth_from_seed, url_path,
			content_type, title, extracted_text, local_artifact_paths,
			crawled_at, error_message, meta_tags
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			canonical_url=excluded.canonical_url,
			status=excluded.status,
			depth_from_seed=excluded.depth_from_seed,
			url_path=excluded.url_path,
			content_type=excluded.content_type,
			title=excluded.title,
			extracted_text=excluded.extracted_text,
			local_artifact_paths=excluded.local_artifact_paths,
			crawled_at=excluded.crawled_at,
			error_message=excluded.error_message,
			meta_tags=excluded.meta_tags
	`,
		doc.URL, doc.CanonicalURL, string(doc.Status), doc.DepthFromSeed, doc.URLPath,
		doc.ContentType, doc.Title, doc.ExtractedText, artifactPaths,
		fmtTime(doc.CrawledAt), doc.ErrorMessage, metaTags,
	)
	if execErr != nil {
		storeErr := &StoreError{Message: execErr.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "UpsertDocument", storeErr)
		return storeErr
	}
	return nil
}

// GetDocument returns the document row for url, or ok=false if no such row
// exists.
func (s *Store) GetDocument(url string) (Document, bool, failure.ClassifiedError) {
	row := s.db.QueryRow(`
		SELECT url, canonical_url, status, depth_from_seed, url_path,
		       content_type, title, extracted_text, local_artifact_paths,
		       crawled_at, error_message, meta_tags
		FROM documents WHERE url = ?
	`, url)

	var (
		doc                           Document
		status, crawledAt             string
		artifactPathsRaw, metaTagsRaw string
	)
	scanErr := row.Scan(
		&doc.URL, &doc.CanonicalURL, &status, &doc.DepthFromSeed, &doc.URLPath,
		&doc.ContentType, &doc.Title, &doc.ExtractedText, &artifactPathsRaw,
		&crawledAt, &doc.ErrorMessage, &metaTagsRaw,
	)
	if scanErr == sql.ErrNoRows {
		return Document{}, false, nil
	}
	if scanErr != nil {
		storeErr := &StoreError{Message: scanErr.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "GetDocument", storeErr)
		return Document{}, false, storeErr
	}

	doc.Status = DocumentStatus(status)
	if parsed, parseErr := time.Parse(time.RFC3339Nano, crawledAt); parseErr == nil {
		doc.CrawledAt = parsed
	}

	artifactPaths, err := decodeArtifactPaths(artifactPathsRaw)
	if err != nil {
		recordStoreError(s.metadataSink, "GetDocument", err)
		return Document{}, false, err
	}
	doc.LocalArtifactPaths = artifactPaths

	metaTags, err := decodeMetaTags(metaTagsRaw)
	if err != nil {
		recordStoreError(s.metadataSink, "GetDocument", err)
		return Document{}, false, err
	}
	doc.MetaTags = metaTags

	return doc, true, nil
}
