// Package export projects a completed crawl's Store into the on-disk
// formats external tooling consumes: one newline-delimited JSON record per
// row for the per-document tables, and a JSON array apiece for the two
// external registries (§6 "Export format").
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/store"
	"github.com/rohmanhakim/sitemap-crawler/pkg/fileutil"
)

// documentRecord is documents.go's Document flattened to the shape an
// external reader expects: JSON-typed columns (local_artifact_paths,
// meta_tags) parsed back to structured values rather than left as the raw
// string the Store persists them as.
type documentRecord struct {
	URL                string              `json:"url"`
	CanonicalURL       string              `json:"canonical_url"`
	Status             store.DocumentStatus `json:"status"`
	DepthFromSeed      int                 `json:"depth_from_seed"`
	URLPath            string              `json:"url_path"`
	ContentType        string              `json:"content_type"`
	Title              string              `json:"title"`
	ExtractedText      string              `json:"extracted_text"`
	LocalArtifactPaths store.ArtifactPaths `json:"local_artifact_paths"`
	CrawledAt          time.Time           `json:"crawled_at"`
	ErrorMessage       string              `json:"error_message,omitempty"`
	MetaTags           store.MetaTags      `json:"meta_tags"`
}

type faqItemRecord struct {
	DocumentURL       string              `json:"document_url"`
	QuestionText      string              `json:"question_text"`
	AnswerText        string              `json:"answer_text"`
	AnswerRawHTML     string              `json:"answer_raw_html"`
	AnswerMode        store.FAQAnswerMode `json:"answer_mode"`
	LinkDepthToAnswer int                 `json:"link_depth_to_answer"`
}

type linkEdgeRecord struct {
	ParentURL         string `json:"parent_url"`
	ChildURL          string `json:"child_url"`
	AnchorText        string `json:"anchor_text"`
	IsExternal        bool   `json:"is_external"`
	CanonicalChildURL string `json:"canonical_child_url"`
}

type assetRecord struct {
	AssetURL      string          `json:"asset_url"`
	SourcePageURL string          `json:"source_page_url,omitempty"`
	AssetType     store.AssetType `json:"asset_type"`
	LocalPath     string          `json:"local_path"`
}

// Result reports how many rows landed in each exported file, for the CLI to
// print a summary.
type Result struct {
	Documents       int
	FAQItems        int
	LinkEdges       int
	Assets          int
	ExternalURLs    int
	ExternalDomains int
}

// ExportAll queries every table st knows about and writes the files this
// package's doc comment describes into outputDir. outputDir is created if
// missing.
func ExportAll(st *store.Store, outputDir string) (Result, error) {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return Result{}, fmt.Errorf("export: %w", err)
	}

	var result Result

	docs, docErr := st.ListDocuments()
	if docErr != nil {
		return Result{}, fmt.Errorf("export: listing documents: %w", docErr)
	}
	if err := writeNDJSON(filepath.Join(outputDir, "documents.ndjson"), docs, toDocumentRecord); err != nil {
		return Result{}, err
	}
	result.Documents = len(docs)

	faqItems, faqErr := st.ListFAQItems()
	if faqErr != nil {
		return Result{}, fmt.Errorf("export: listing faq items: %w", faqErr)
	}
	if err := writeNDJSON(filepath.Join(outputDir, "faq_items.ndjson"), faqItems, toFAQItemRecord); err != nil {
		return Result{}, err
	}
	result.FAQItems = len(faqItems)

	edges, edgeErr := st.ListLinkEdges()
	if edgeErr != nil {
		return Result{}, fmt.Errorf("export: listing link edges: %w", edgeErr)
	}
	if err := writeNDJSON(filepath.Join(outputDir, "link_edges.ndjson"), edges, toLinkEdgeRecord); err != nil {
		return Result{}, err
	}
	result.LinkEdges = len(edges)

	assets, assetErr := st.ListAssets()
	if assetErr != nil {
		return Result{}, fmt.Errorf("export: listing assets: %w", assetErr)
	}
	if err := writeNDJSON(filepath.Join(outputDir, "assets.ndjson"), assets, toAssetRecord); err != nil {
		return Result{}, err
	}
	result.Assets = len(assets)

	externalURLs, extURLErr := st.ListExternalURLs()
	if extURLErr != nil {
		return Result{}, fmt.Errorf("export: listing external urls: %w", extURLErr)
	}
	if err := writeJSONArray(filepath.Join(outputDir, "external_links_global.json"), externalURLs); err != nil {
		return Result{}, err
	}
	result.ExternalURLs = len(externalURLs)

	externalDomains, extDomErr := st.ListExternalDomains()
	if extDomErr != nil {
		return Result{}, fmt.Errorf("export: listing external domains: %w", extDomErr)
	}
	if err := writeJSONArray(filepath.Join(outputDir, "external_domains_global.json"), externalDomains); err != nil {
		return Result{}, err
	}
	result.ExternalDomains = len(externalDomains)

	return result, nil
}

func toDocumentRecord(d store.Document) documentRecord {
	return documentRecord{
		URL:                d.URL,
		CanonicalURL:       d.CanonicalURL,
		Status:             d.Status,
		DepthFromSeed:      d.DepthFromSeed,
		URLPath:            d.URLPath,
		ContentType:        d.ContentType,
		Title:              d.Title,
		ExtractedText:      d.ExtractedText,
		LocalArtifactPaths: d.LocalArtifactPaths,
		CrawledAt:          d.CrawledAt,
		ErrorMessage:       d.ErrorMessage,
		MetaTags:           d.MetaTags,
	}
}

func toFAQItemRecord(f store.FAQItem) faqItemRecord {
	return faqItemRecord{
		DocumentURL:       f.DocumentURL,
		QuestionText:      f.QuestionText,
		AnswerText:        f.AnswerText,
		AnswerRawHTML:     f.AnswerRawHTML,
		AnswerMode:        f.AnswerMode,
		LinkDepthToAnswer: f.LinkDepthToAnswer,
	}
}

func toLinkEdgeRecord(e store.LinkEdge) linkEdgeRecord {
	return linkEdgeRecord{
		ParentURL:         e.ParentURL,
		ChildURL:          e.ChildURL,
		AnchorText:        e.AnchorText,
		IsExternal:        e.IsExternal,
		CanonicalChildURL: e.CanonicalChildURL,
	}
}

func toAssetRecord(a store.Asset) assetRecord {
	return assetRecord{
		AssetURL:      a.AssetURL,
		SourcePageURL: a.SourcePageURL,
		AssetType:     a.AssetType,
		LocalPath:     a.LocalPath,
	}
}

// writeNDJSON writes one JSON object per line, one line per element of
// rows, each projected through toRecord first.
func writeNDJSON[T, R any](path string, rows []T, toRecord func(T) R) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(toRecord(row)); err != nil {
			return fmt.Errorf("export: encoding row into %s: %w", path, err)
		}
	}
	return w.Flush()
}

// writeJSONArray writes rows as a single JSON array, used for the two
// external registries which are small and read as a whole, not streamed.
func writeJSONArray[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if rows == nil {
		rows = []T{}
	}
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("export: encoding %s: %w", path, err)
	}
	return nil
}
