package store

import "github.com/rohmanhakim/sitemap-crawler/pkg/failure"

// AddFAQItems bulk-inserts FAQ rows for a single document. Callers must
// upsert the parent Document row first (invariant: every FAQ Item has a
// Document ancestor).
func (s *Store) AddFAQItems(items []FAQItem) failure.ClassifiedError {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "AddFAQItems", storeErr)
		return storeErr
	}

	stmt, err := tx.Prepare(`
		INSERT INTO faq_items (
			document_url, question_text, answer_text, answer_raw_html,
			answer_mode, link_depth_to_answer
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "AddFAQItems", storeErr)
		return storeErr
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(
			item.DocumentURL, item.QuestionText, item.AnswerText, item.AnswerRawHTML,
			string(item.AnswerMode), item.LinkDepthToAnswer,
		); err != nil {
			tx.Rollback()
			storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
			recordStoreError(s.metadataSink, "AddFAQItems", storeErr)
			return storeErr
		}
	}

	if err := tx.Commit(); err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "AddFAQItems", storeErr)
		return storeErr
	}
	return nil
}
