package store

import (
	"database/sql"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
)

// ExternalURL mirrors one row of the external_links_global table.
type ExternalURL struct {
	URL         string
	FirstSeenAt time.Time
}

// ExternalDomain mirrors one row of the external_domains_global table.
type ExternalDomain struct {
	Domain      string
	FirstSeenAt time.Time
}

// ListDocuments returns every document row, ordered by URL for a stable
// export ordering across runs against the same database.
func (s *Store) ListDocuments() ([]Document, failure.ClassifiedError) {
	rows, err := s.db.Query(`
		SELECT url, canonical_url, status, depth_from_seed, url_path,
		       content_type, title, extracted_text, local_artifact_paths,
		       crawled_at, error_message, meta_tags
		FROM documents ORDER BY url
	`)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "ListDocuments", storeErr)
		return nil, storeErr
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			doc                           Document
			status, crawledAt             string
			artifactPathsRaw, metaTagsRaw string
		)
		if err := rows.Scan(
			&doc.URL, &doc.CanonicalURL, &status, &doc.DepthFromSeed, &doc.URLPath,
			&doc.ContentType, &doc.Title, &doc.ExtractedText, &artifactPathsRaw,
			&crawledAt, &doc.ErrorMessage, &metaTagsRaw,
		); err != nil {
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
			recordStoreError(s.metadataSink, "ListDocuments", storeErr)
			return nil, storeErr
		}
		doc.Status = DocumentStatus(status)
		if parsed, parseErr := time.Parse(time.RFC3339Nano, crawledAt); parseErr == nil {
			doc.CrawledAt = parsed
		}
		artifactPaths, decErr := decodeArtifactPaths(artifactPathsRaw)
		if decErr != nil {
			recordStoreError(s.metadataSink, "ListDocuments", decErr)
			return nil, decErr
		}
		doc.LocalArtifactPaths = artifactPaths
		metaTags, decErr := decodeMetaTags(metaTagsRaw)
		if decErr != nil {
			recordStoreError(s.metadataSink, "ListDocuments", decErr)
			return nil, decErr
		}
		doc.MetaTags = metaTags
		docs = append(docs, doc)
	}
	return docs, nil
}

// ListFAQItems returns every FAQ item row, ordered by document_url so every
// document's FAQ items stay contiguous in an export.
func (s *Store) ListFAQItems() ([]FAQItem, failure.ClassifiedError) {
	rows, err := s.db.Query(`
		SELECT document_url, question_text, answer_text, answer_raw_html,
		       answer_mode, link_depth_to_answer
		FROM faq_items ORDER BY document_url
	`)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "ListFAQItems", storeErr)
		return nil, storeErr
	}
	defer rows.Close()

	var items []FAQItem
	for rows.Next() {
		var item FAQItem
		var mode string
		if err := rows.Scan(
			&item.DocumentURL, &item.QuestionText, &item.AnswerText, &item.AnswerRawHTML,
			&mode, &item.LinkDepthToAnswer,
		); err != nil {
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
			recordStoreError(s.metadataSink, "ListFAQItems", storeErr)
			return nil, storeErr
		}
		item.AnswerMode = FAQAnswerMode(mode)
		items = append(items, item)
	}
	return items, nil
}

// ListLinkEdges returns every link edge row, ordered by parent_url.
func (s *Store) ListLinkEdges() ([]LinkEdge, failure.ClassifiedError) {
	rows, err := s.db.Query(`
		SELECT parent_url, child_url, anchor_text, is_external, canonical_child_url
		FROM link_edges ORDER BY parent_url
	`)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "ListLinkEdges", storeErr)
		return nil, storeErr
	}
	defer rows.Close()

	var edges []LinkEdge
	for rows.Next() {
		var edge LinkEdge
		if err := rows.Scan(
			&edge.ParentURL, &edge.ChildURL, &edge.AnchorText, &edge.IsExternal, &edge.CanonicalChildURL,
		); err != nil {
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
			recordStoreError(s.metadataSink, "ListLinkEdges", storeErr)
			return nil, storeErr
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// ListAssets returns every asset row, ordered by asset_url.
func (s *Store) ListAssets() ([]Asset, failure.ClassifiedError) {
	rows, err := s.db.Query(`
		SELECT asset_url, source_page_url, asset_type, local_path
		FROM assets ORDER BY asset_url
	`)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "ListAssets", storeErr)
		return nil, storeErr
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		var (
			asset         Asset
			assetType     string
			sourcePageURL sql.NullString
		)
		if err := rows.Scan(&asset.AssetURL, &sourcePageURL, &assetType, &asset.LocalPath); err != nil {
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
			recordStoreError(s.metadataSink, "ListAssets", storeErr)
			return nil, storeErr
		}
		asset.SourcePageURL = sourcePageURL.String
		asset.AssetType = AssetType(assetType)
		assets = append(assets, asset)
	}
	return assets, nil
}

// ListExternalURLs returns every registered external URL, ordered by URL.
func (s *Store) ListExternalURLs() ([]ExternalURL, failure.ClassifiedError) {
	rows, err := s.db.Query(`SELECT url, first_seen_at FROM external_links_global ORDER BY url`)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "ListExternalURLs", storeErr)
		return nil, storeErr
	}
	defer rows.Close()

	var out []ExternalURL
	for rows.Next() {
		var item ExternalURL
		var firstSeenAt string
		if err := rows.Scan(&item.URL, &firstSeenAt); err != nil {
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
			recordStoreError(s.metadataSink, "ListExternalURLs", storeErr)
			return nil, storeErr
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, firstSeenAt); parseErr == nil {
			item.FirstSeenAt = parsed
		}
		out = append(out, item)
	}
	return out, nil
}

// ListExternalDomains returns every registered external domain, ordered by
// domain.
func (s *Store) ListExternalDomains() ([]ExternalDomain, failure.ClassifiedError) {
	rows, err := s.db.Query(`SELECT domain, first_seen_at FROM external_domains_global ORDER BY domain`)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
		recordStoreError(s.metadataSink, "ListExternalDomains", storeErr)
		return nil, storeErr
	}
	defer rows.Close()

	var out []ExternalDomain
	for rows.Next() {
		var item ExternalDomain
		var firstSeenAt string
		if err := rows.Scan(&item.Domain, &firstSeenAt); err != nil {
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure}
			recordStoreError(s.metadataSink, "ListExternalDomains", storeErr)
			return nil, storeErr
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, firstSeenAt); parseErr == nil {
			item.FirstSeenAt = parsed
		}
		out = append(out, item)
	}
	return out, nil
}
