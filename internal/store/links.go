package store

import "github.com/rohmanhakim/sitemap-crawler/pkg/failure"

// AddLinkEdges bulk-inserts the entire outbound link set discovered on one
// page, regardless of whether any child will actually be fetched. Callers
// must upsert the parent Document row first (invariant: every Link Edge has
// a Document ancestor in parent_url).
func (s *Store) AddLinkEdges(edges []LinkEdge) failure.ClassifiedError {
	if len(edges) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "AddLinkEdges", storeErr)
		return storeErr
	}

	stmt, err := tx.Prepare(`
		INSERT INTO link_edges (
			parent_url, child_url, anchor_text, is_external, canonical_child_url
		) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "AddLinkEdges", storeErr)
		return storeErr
	}
	defer stmt.Close()

	for _, edge := range edges {
		if _, err := stmt.Exec(
			edge.ParentURL, edge.ChildURL, edge.AnchorText, edge.IsExternal, edge.CanonicalChildURL,
		); err != nil {
			tx.Rollback()
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
			recordStoreError(s.metadataSink, "AddLinkEdges", storeErr)
			return storeErr
		}
	}

	if err := tx.Commit(); err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "AddLinkEdges", storeErr)
		return storeErr
	}
	return nil
}
