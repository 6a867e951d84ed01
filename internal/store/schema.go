package store

// schema is applied on every Open. Every statement is idempotent so
// repeated application against an existing database file is a no-op.
const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS documents (
	url                  TEXT PRIMARY KEY,
	canonical_url        TEXT,
	status               TEXT,
	depth_from_seed      INTEGER,
	url_path             TEXT,
	content_type         TEXT,
	title                TEXT,
	extracted_text       TEXT,
	local_artifact_paths TEXT,
	crawled_at           TIMESTAMP,
	error_message        TEXT,
	meta_tags            TEXT
);

CREATE TABLE IF NOT EXISTS faq_items (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	document_url         TEXT,
	question_text        TEXT,
	answer_text          TEXT,
	answer_raw_html      TEXT,
	answer_mode          TEXT,
	link_depth_to_answer INTEGER,
	FOREIGN KEY (document_url) REFERENCES documents(url)
);

CREATE TABLE IF NOT EXISTS link_edges (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	parent_url          TEXT,
	child_url           TEXT,
	anchor_text         TEXT,
	is_external         BOOLEAN,
	canonical_child_url TEXT,
	FOREIGN KEY (parent_url) REFERENCES documents(url)
);

CREATE TABLE IF NOT EXISTS assets (
	asset_url       TEXT PRIMARY KEY,
	source_page_url TEXT,
	asset_type      TEXT,
	local_path      TEXT,
	FOREIGN KEY (source_page_url) REFERENCES documents(url)
);

CREATE TABLE IF NOT EXISTS external_links_global (
	url           TEXT PRIMARY KEY,
	first_seen_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS external_domains_global (
	domain        TEXT PRIMARY KEY,
	first_seen_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS crawl_queue (
	url           TEXT PRIMARY KEY,
	depth         INTEGER,
	parent_url    TEXT,
	status        TEXT DEFAULT 'pending',
	added_at      TIMESTAMP,
	priority      INTEGER DEFAULT 0,
	attempt_count INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS crawl_state (
	key   TEXT PRIMARY KEY,
	value TEXT
);

-- External-content FTS5 index: title/extracted_text are read straight out of
-- the documents row named by rowid, so re-upserting a document never leaves
-- behind a stale duplicate search row (the bug the Python prototype had).
CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	title,
	extracted_text,
	content='documents',
	content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
	INSERT INTO documents_fts(rowid, title, extracted_text) VALUES (new.rowid, new.title, new.extracted_text);
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, extracted_text) VALUES ('delete', old.rowid, old.title, old.extracted_text);
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
	INSERT INTO documents_fts(documents_fts, rowid, title, extracted_text) VALUES ('delete', old.rowid, old.title, old.extracted_text);
	INSERT INTO documents_fts(rowid, title, extracted_text) VALUES (new.rowid, new.title, new.extracted_text);
END;
`
