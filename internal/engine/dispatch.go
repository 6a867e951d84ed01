package engine

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohmanhakim/sitemap-crawler/internal/faq"
	"github.com/rohmanhakim/sitemap-crawler/internal/fetcher"
	"github.com/rohmanhakim/sitemap-crawler/internal/htmlutil"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/storage"
	"github.com/rohmanhakim/sitemap-crawler/internal/store"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"github.com/rohmanhakim/sitemap-crawler/pkg/urlutil"
	"golang.org/x/net/html"
)

// dispatch implements §4.8 step 8, branching on baseType. doc is mutated in
// place with whatever artifacts/text/meta the handler produces; processOne
// re-upserts it afterward regardless of outcome.
func (e *Engine) dispatch(
	item store.QueueItem,
	sourceURL url.URL,
	baseType string,
	doc *store.Document,
	result fetcher.FetchResult,
) (int, failure.ClassifiedError) {
	switch {
	case baseType == "text/html":
		return 0, e.handleHTML(item, sourceURL, doc, result)
	case baseType == "application/pdf":
		return e.handlePDF(item, doc, result)
	case strings.HasPrefix(baseType, "video/") || strings.HasPrefix(baseType, "audio/"):
		return e.handleMedia(item, baseType, doc, result)
	default:
		return 0, nil
	}
}

func (e *Engine) handleHTML(
	item store.QueueItem,
	sourceURL url.URL,
	doc *store.Document,
	result fetcher.FetchResult,
) failure.ClassifiedError {
	htmlDir := e.outputDirectories[storage.OutputDirKey(metadata.ArtifactHTML)]
	htmlWrite, writeErr := e.artifactWriter.Write(htmlDir, metadata.ArtifactHTML, item.URL, storage.KindExtension(metadata.ArtifactHTML), result.Body())
	if writeErr != nil {
		return writeErr
	}
	doc.LocalArtifactPaths.HTML = htmlWrite.Path()

	extraction, extractErr := e.docExtractor.Extract(sourceURL, result.Body())
	if extractErr != nil {
		return extractErr
	}

	doc.Title = htmlutil.ExtractTitle(extraction.DocumentRoot)
	doc.ExtractedText = htmlutil.ExtractText(extraction.ContentNode)

	// Markdown rendering degrades gracefully: a sanitize or convert failure
	// (already recorded to the metadata sink by that stage) leaves the
	// Markdown artifact empty instead of failing the page.
	var markdown []byte
	if sanitized, sanitizeErr := e.sanitizer.Sanitize(extraction.ContentNode); sanitizeErr == nil {
		if converted, convertErr := e.converter.Convert(sanitized); convertErr == nil {
			markdown = converted.GetMarkdownContent()
		}
	}

	mdDir := e.outputDirectories[storage.OutputDirKey(metadata.ArtifactMarkdown)]
	mdWrite, writeErr := e.artifactWriter.Write(mdDir, metadata.ArtifactMarkdown, item.URL, storage.KindExtension(metadata.ArtifactMarkdown), markdown)
	if writeErr != nil {
		return writeErr
	}
	doc.LocalArtifactPaths.Markdown = mdWrite.Path()

	// FAQ and link discovery both run against the full parsed document, not
	// the narrowed content node: a disclosure widget or nav-adjacent link
	// list is frequently chrome the extractor trims away.
	candidates := faq.Extract(extraction.DocumentRoot)
	doc.MetaTags.IsFAQPage = len(candidates) > 0

	if len(candidates) > 0 {
		items := make([]store.FAQItem, 0, len(candidates))
		for _, c := range candidates {
			items = append(items, store.FAQItem{
				DocumentURL:   item.URL,
				QuestionText:  c.QuestionText,
				AnswerText:    c.AnswerText,
				AnswerRawHTML: c.AnswerHTML,
				AnswerMode:    store.FAQAnswerMode(c.AnswerMode),
			})
		}
		if err := e.store.AddFAQItems(items); err != nil {
			return err
		}
	}

	return e.discoverLinks(item, sourceURL, extraction.DocumentRoot, doc.MetaTags.IsFAQPage)
}

func (e *Engine) handlePDF(
	item store.QueueItem,
	doc *store.Document,
	result fetcher.FetchResult,
) (int, failure.ClassifiedError) {
	pdfDir := e.outputDirectories[storage.OutputDirKey(metadata.ArtifactPDF)]
	pdfWrite, writeErr := e.artifactWriter.Write(pdfDir, metadata.ArtifactPDF, item.URL, storage.KindExtension(metadata.ArtifactPDF), result.Body())
	if writeErr != nil {
		return 0, writeErr
	}
	doc.LocalArtifactPaths.PDF = pdfWrite.Path()

	if text, err := extractPDFText(pdfWrite.Path()); err == nil {
		textDir := e.outputDirectories[storage.OutputDirKey(metadata.ArtifactPDFText)]
		textWrite, writeErr := e.artifactWriter.Write(textDir, metadata.ArtifactPDFText, item.URL, storage.KindExtension(metadata.ArtifactPDFText), []byte(text))
		if writeErr == nil {
			doc.LocalArtifactPaths.PDFText = textWrite.Path()
			doc.ExtractedText = text
		}
	} else {
		// Text extraction is best-effort: a scanned/encrypted PDF still
		// counts as crawled, it just carries no extracted text.
		doc.ErrorMessage = fmt.Sprintf("pdf text extraction failed: %v", err)
	}

	if err := e.store.AddAsset(store.Asset{
		AssetURL:      item.URL,
		SourcePageURL: item.ParentURL,
		AssetType:     store.AssetPDF,
		LocalPath:     pdfWrite.Path(),
	}); err != nil {
		return 0, err
	}

	return 1, nil
}

func (e *Engine) handleMedia(
	item store.QueueItem,
	baseType string,
	doc *store.Document,
	result fetcher.FetchResult,
) (int, failure.ClassifiedError) {
	if e.maxAssetSize > 0 && int64(len(result.Body())) > e.maxAssetSize {
		doc.Status = store.StatusVideoUnavailable
		doc.ErrorMessage = fmt.Sprintf("asset exceeds max_asset_size (%d bytes)", e.maxAssetSize)
		return 0, nil
	}

	videoDir := e.outputDirectories[storage.OutputDirKey(metadata.ArtifactMedia)]
	write, writeErr := e.artifactWriter.Write(videoDir, metadata.ArtifactMedia, item.URL, extensionForContentType(baseType), result.Body())
	if writeErr != nil {
		doc.Status = store.StatusVideoUnavailable
		doc.ErrorMessage = writeErr.Error()
		return 0, nil
	}
	doc.LocalArtifactPaths.Media = write.Path()

	assetType := store.AssetVideo
	if strings.HasPrefix(baseType, "audio/") {
		assetType = store.AssetAudio
	}

	if err := e.store.AddAsset(store.Asset{
		AssetURL:      item.URL,
		SourcePageURL: item.ParentURL,
		AssetType:     assetType,
		LocalPath:     write.Path(),
	}); err != nil {
		return 0, err
	}

	return 1, nil
}

// discoverLinks implements the link-extraction half of step 8's html
// branch: every discovered anchor becomes a Link Edge, external ones are
// registered in the global registries, and internal ones are enqueued
// subject to the depth policy (§4.8 depth policy).
func (e *Engine) discoverLinks(item store.QueueItem, sourceURL url.URL, documentRoot *html.Node, isFAQPage bool) failure.ClassifiedError {
	links := htmlutil.ExtractLinks(documentRoot, sourceURL)
	if len(links) == 0 {
		return nil
	}

	effectiveLimit := e.maxDepthGeneral
	if isFAQPage {
		effectiveLimit = e.maxDepthFAQ
	}

	edges := make([]store.LinkEdge, 0, len(links))
	for _, link := range links {
		childURL, parseErr := url.Parse(link.URL)
		if parseErr != nil {
			continue
		}
		canonicalChild := urlutil.Canonicalize(*childURL, e.hostAliases)
		isExternal := !e.isAllowedHost(childURL.Hostname())

		edges = append(edges, store.LinkEdge{
			ParentURL:         item.URL,
			ChildURL:          link.URL,
			AnchorText:        link.Text,
			IsExternal:        isExternal,
			CanonicalChildURL: canonicalChild.String(),
		})

		if isExternal {
			if err := e.store.RegisterExternalURL(link.URL); err != nil {
				return err
			}
			if err := e.store.RegisterExternalDomain(childURL.Hostname()); err != nil {
				return err
			}
			continue
		}

		nextDepth := item.Depth + 1
		if nextDepth > effectiveLimit {
			continue
		}
		known, err := e.store.IsKnown(canonicalChild.String())
		if err != nil {
			return err
		}
		if known {
			continue
		}
		if err := e.store.QueueURL(canonicalChild.String(), nextDepth, item.URL, 0); err != nil {
			return err
		}
	}

	return e.store.AddLinkEdges(edges)
}

func (e *Engine) isAllowedHost(host string) bool {
	if len(e.allowedHosts) == 0 {
		return true
	}
	_, ok := e.allowedHosts[host]
	return ok
}

// extensionForContentType maps a video/audio base content type to an on-disk
// extension; unrecognized subtypes fall back to the subtype itself so a
// write never silently loses its format.
func extensionForContentType(baseType string) string {
	switch baseType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/ogg":
		return ".ogv"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/ogg":
		return ".oga"
	}
	if _, subtype, ok := strings.Cut(baseType, "/"); ok && subtype != "" {
		return "." + subtype
	}
	return ".bin"
}
