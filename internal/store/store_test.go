package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/store"
)

func openTestStore(t *testing.T) store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "crawl.db")
	s, err := store.Open(dbPath, 3, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "crawl.db")
	s, err := store.Open(dbPath, 3, nil)
	if err != nil {
		t.Fatalf("expected Open to create parent dir, got error: %v", err)
	}
	defer s.Close()
}

func TestOpen_IdempotentOnExistingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "crawl.db")

	s1, err := store.Open(dbPath, 3, nil)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	s1.Close()

	s2, err := store.Open(dbPath, 3, nil)
	if err != nil {
		t.Fatalf("second Open against existing file failed: %v", err)
	}
	defer s2.Close()
}

func TestOpen_SweepsStaleProcessingRowsToPending(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "crawl.db")

	s1, err := store.Open(dbPath, 3, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s1.QueueURL("https://example.com/stuck", 0, "", 0); err != nil {
		t.Fatalf("QueueURL failed: %v", err)
	}
	if err := s1.UpdateQueueStatus("https://example.com/stuck", store.QueueProcessing); err != nil {
		t.Fatalf("UpdateQueueStatus failed: %v", err)
	}
	s1.Close()

	s2, err := store.Open(dbPath, 3, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	item, ok, err := s2.NextPending()
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if !ok {
		t.Fatal("expected the stale processing row to resurface as pending")
	}
	if item.URL != "https://example.com/stuck" {
		t.Errorf("expected stuck URL, got %s", item.URL)
	}
	if item.AttemptCount != 1 {
		t.Errorf("expected attempt_count incremented to 1, got %d", item.AttemptCount)
	}
}

func TestOpen_FailsStaleProcessingRowsPastMaxAttempt(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "crawl.db")

	s1, err := store.Open(dbPath, 1, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s1.QueueURL("https://example.com/doomed", 0, "", 0); err != nil {
		t.Fatalf("QueueURL failed: %v", err)
	}
	if err := s1.UpdateQueueStatus("https://example.com/doomed", store.QueueProcessing); err != nil {
		t.Fatalf("UpdateQueueStatus failed: %v", err)
	}
	s1.Close()

	s2, err := store.Open(dbPath, 1, nil)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	_, ok, err := s2.NextPending()
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if ok {
		t.Fatal("expected the exhausted-attempt row to not resurface as pending")
	}

	counts, err := s2.QueueCounts()
	if err != nil {
		t.Fatalf("QueueCounts failed: %v", err)
	}
	if counts[store.QueueFailed] != 1 {
		t.Errorf("expected 1 failed row, got %d", counts[store.QueueFailed])
	}
}

func TestUpsertDocument_GetDocument_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	doc := store.Document{
		URL:           "https://example.com/docs/page",
		CanonicalURL:  "https://example.com/docs/page",
		Status:        store.StatusCrawled,
		DepthFromSeed: 2,
		URLPath:       "/docs/page",
		ContentType:   "text/html",
		Title:         "Example Page",
		ExtractedText: "Example body text.",
		LocalArtifactPaths: store.ArtifactPaths{
			HTML:     "output/html/abc.html",
			Markdown: "output/md/abc.md",
		},
		CrawledAt:    time.Now(),
		ErrorMessage: "",
		MetaTags:     store.MetaTags{IsFAQPage: true},
	}

	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("UpsertDocument failed: %v", err)
	}

	got, ok, err := s.GetDocument(doc.URL)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if !ok {
		t.Fatal("expected document to be found")
	}
	if got.Status != store.StatusCrawled {
		t.Errorf("expected status CRAWLED, got %s", got.Status)
	}
	if got.Title != doc.Title {
		t.Errorf("expected title %q, got %q", doc.Title, got.Title)
	}
	if got.LocalArtifactPaths.Markdown != doc.LocalArtifactPaths.Markdown {
		t.Errorf("expected markdown path %q, got %q", doc.LocalArtifactPaths.Markdown, got.LocalArtifactPaths.Markdown)
	}
	if !got.MetaTags.IsFAQPage {
		t.Error("expected IsFAQPage to round-trip true")
	}
}

func TestUpsertDocument_Reupsert(t *testing.T) {
	s := openTestStore(t)

	doc := store.Document{URL: "https://example.com/a", Status: store.StatusFetchError}
	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("initial UpsertDocument failed: %v", err)
	}

	doc.Status = store.StatusCrawled
	doc.Title = "Updated Title"
	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("re-UpsertDocument failed: %v", err)
	}

	got, ok, err := s.GetDocument(doc.URL)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if !ok {
		t.Fatal("expected document to be found")
	}
	if got.Status != store.StatusCrawled {
		t.Errorf("expected status to have been updated to CRAWLED, got %s", got.Status)
	}
	if got.Title != "Updated Title" {
		t.Errorf("expected title to have been updated, got %q", got.Title)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetDocument("https://example.com/missing")
	if err != nil {
		t.Fatalf("expected no error for missing document, got: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a URL with no document row")
	}
}

func TestStatusHTTP_FormatsCode(t *testing.T) {
	if got := store.StatusHTTP(404); got != "HTTP_404" {
		t.Errorf("expected HTTP_404, got %s", got)
	}
	if got := store.StatusHTTP(500); got != "HTTP_500" {
		t.Errorf("expected HTTP_500, got %s", got)
	}
}

func TestAddFAQItems(t *testing.T) {
	s := openTestStore(t)

	parent := store.Document{URL: "https://example.com/faq", Status: store.StatusCrawled}
	if err := s.UpsertDocument(parent); err != nil {
		t.Fatalf("UpsertDocument failed: %v", err)
	}

	items := []store.FAQItem{
		{
			DocumentURL:  parent.URL,
			QuestionText: "How do I reset my password?",
			AnswerText:   "Go to settings and click reset.",
			AnswerMode:   store.AnswerDirectText,
		},
		{
			DocumentURL:       parent.URL,
			QuestionText:      "Where is the billing portal?",
			AnswerMode:        store.AnswerLinkOut,
			LinkDepthToAnswer: 1,
		},
	}

	if err := s.AddFAQItems(items); err != nil {
		t.Fatalf("AddFAQItems failed: %v", err)
	}
}

func TestAddFAQItems_EmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddFAQItems(nil); err != nil {
		t.Fatalf("expected nil error for empty slice, got: %v", err)
	}
}

func TestAddLinkEdges(t *testing.T) {
	s := openTestStore(t)

	parent := store.Document{URL: "https://example.com/index", Status: store.StatusCrawled}
	if err := s.UpsertDocument(parent); err != nil {
		t.Fatalf("UpsertDocument failed: %v", err)
	}

	edges := []store.LinkEdge{
		{ParentURL: parent.URL, ChildURL: "https://example.com/child", AnchorText: "Child", IsExternal: false},
		{ParentURL: parent.URL, ChildURL: "https://other.com/x", AnchorText: "Other", IsExternal: true},
	}

	if err := s.AddLinkEdges(edges); err != nil {
		t.Fatalf("AddLinkEdges failed: %v", err)
	}
}

func TestAddAsset_UpsertBySourceURL(t *testing.T) {
	s := openTestStore(t)

	asset := store.Asset{
		AssetURL:      "https://example.com/file.pdf",
		SourcePageURL: "https://example.com/docs/page",
		AssetType:     store.AssetPDF,
		LocalPath:     "output/pdf/abc.pdf",
	}
	if err := s.AddAsset(asset); err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}

	asset.LocalPath = "output/pdf/abc-renamed.pdf"
	if err := s.AddAsset(asset); err != nil {
		t.Fatalf("re-AddAsset failed: %v", err)
	}
}

func TestAddAsset_SeedWithNoSourcePage(t *testing.T) {
	s := openTestStore(t)

	asset := store.Asset{
		AssetURL:  "https://example.com/seed.pdf",
		AssetType: store.AssetPDF,
		LocalPath: "output/pdf/seed.pdf",
	}
	if err := s.AddAsset(asset); err != nil {
		t.Fatalf("expected seed asset with empty SourcePageURL to be accepted, got: %v", err)
	}
}

func TestRegisterExternalURL_And_Domain(t *testing.T) {
	s := openTestStore(t)

	if err := s.RegisterExternalURL("https://external.com/page"); err != nil {
		t.Fatalf("RegisterExternalURL failed: %v", err)
	}
	// Re-registering the same URL must be a no-op, not an error.
	if err := s.RegisterExternalURL("https://external.com/page"); err != nil {
		t.Fatalf("re-RegisterExternalURL failed: %v", err)
	}

	if err := s.RegisterExternalDomain("external.com"); err != nil {
		t.Fatalf("RegisterExternalDomain failed: %v", err)
	}
	if err := s.RegisterExternalDomain("external.com"); err != nil {
		t.Fatalf("re-RegisterExternalDomain failed: %v", err)
	}
}

func TestQueueURL_DuplicateIsNoop(t *testing.T) {
	s := openTestStore(t)

	if err := s.QueueURL("https://example.com/a", 0, "", 5); err != nil {
		t.Fatalf("QueueURL failed: %v", err)
	}
	if err := s.QueueURL("https://example.com/a", 1, "https://example.com/parent", 10); err != nil {
		t.Fatalf("duplicate QueueURL failed: %v", err)
	}

	item, ok, err := s.NextPending()
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if !ok {
		t.Fatal("expected one pending item")
	}
	if item.Priority != 5 {
		t.Errorf("expected the first enqueue's priority (5) to win, got %d", item.Priority)
	}
}

func TestNextPending_OrdersByPriorityThenAge(t *testing.T) {
	s := openTestStore(t)

	if err := s.QueueURL("https://example.com/low", 0, "", 1); err != nil {
		t.Fatalf("QueueURL failed: %v", err)
	}
	if err := s.QueueURL("https://example.com/high", 0, "", 10); err != nil {
		t.Fatalf("QueueURL failed: %v", err)
	}

	item, ok, err := s.NextPending()
	if err != nil {
		t.Fatalf("NextPending failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a pending item")
	}
	if item.URL != "https://example.com/high" {
		t.Errorf("expected higher-priority URL first, got %s", item.URL)
	}
}

func TestNextPending_EmptyQueue(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.NextPending()
	if err != nil {
		t.Fatalf("expected no error on empty queue, got: %v", err)
	}
	if ok {
		t.Error("expected ok=false on empty queue")
	}
}

func TestUpdateQueueStatus(t *testing.T) {
	s := openTestStore(t)

	if err := s.QueueURL("https://example.com/a", 0, "", 0); err != nil {
		t.Fatalf("QueueURL failed: %v", err)
	}
	if err := s.UpdateQueueStatus("https://example.com/a", store.QueueCompleted); err != nil {
		t.Fatalf("UpdateQueueStatus failed: %v", err)
	}

	counts, err := s.QueueCounts()
	if err != nil {
		t.Fatalf("QueueCounts failed: %v", err)
	}
	if counts[store.QueueCompleted] != 1 {
		t.Errorf("expected 1 completed row, got %d", counts[store.QueueCompleted])
	}
	if counts[store.QueuePending] != 0 {
		t.Errorf("expected 0 pending rows, got %d", counts[store.QueuePending])
	}
}

func TestIsKnown(t *testing.T) {
	s := openTestStore(t)

	known, err := s.IsKnown("https://example.com/never-seen")
	if err != nil {
		t.Fatalf("IsKnown failed: %v", err)
	}
	if known {
		t.Error("expected unknown URL to report false")
	}

	if err := s.QueueURL("https://example.com/queued", 0, "", 0); err != nil {
		t.Fatalf("QueueURL failed: %v", err)
	}
	known, err = s.IsKnown("https://example.com/queued")
	if err != nil {
		t.Fatalf("IsKnown failed: %v", err)
	}
	if !known {
		t.Error("expected a queued URL to report known=true")
	}

	doc := store.Document{URL: "https://example.com/crawled", Status: store.StatusCrawled}
	if err := s.UpsertDocument(doc); err != nil {
		t.Fatalf("UpsertDocument failed: %v", err)
	}
	known, err = s.IsKnown(doc.URL)
	if err != nil {
		t.Fatalf("IsKnown failed: %v", err)
	}
	if !known {
		t.Error("expected a crawled URL to report known=true")
	}
}

func TestQueueCounts_Empty(t *testing.T) {
	s := openTestStore(t)

	counts, err := s.QueueCounts()
	if err != nil {
		t.Fatalf("QueueCounts failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected no rows in an empty queue, got %v", counts)
	}
}
