package store

import "github.com/rohmanhakim/sitemap-crawler/pkg/failure"

// AddAsset upserts an asset row, deduplicated by AssetURL. SourcePageURL
// records the discovering parent page, left empty when the asset itself was
// a seed URL with no discovering parent.
func (s *Store) AddAsset(asset Asset) failure.ClassifiedError {
	_, err := s.db.Exec(`
		INSERT INTO assets (asset_url, source_page_url, asset_type, local_path)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(asset_url) DO UPDATE SET
			source_page_url=excluded.source_page_url,
			asset_type=excluded.asset_type,
			local_path=excluded.local_path
	`, asset.AssetURL, nullableString(asset.SourcePageURL), string(asset.AssetType), asset.LocalPath)
	if err != nil {
		storeErr := &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure}
		recordStoreError(s.metadataSink, "AddAsset", storeErr)
		return storeErr
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
