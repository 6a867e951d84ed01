// Package engine is the crawl orchestrator: it dequeues frontier rows from
// the Store, admits them through robots/domain/section policy, fetches,
// dispatches by content type, and re-enqueues discovered links.
package engine

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/store"
	"github.com/rohmanhakim/sitemap-crawler/pkg/failure"
	"github.com/rohmanhakim/sitemap-crawler/pkg/urlutil"
)

// Seed enqueues every configured seed URL at depth 0, priority 100 (§6).
// Re-running Seed against an already-populated Store is a no-op for URLs
// already queued or crawled (QueueURL is INSERT OR IGNORE).
func (e *Engine) Seed(seedURLs []url.URL) failure.ClassifiedError {
	for _, u := range seedURLs {
		canonical := urlutil.Canonicalize(u, e.hostAliases)
		if err := e.store.QueueURL(canonical.String(), 0, "", 100); err != nil {
			return err
		}
	}
	return nil
}

// Run drains the frontier until empty, processing one URL at a time. It
// returns only on a fatal infrastructure error (Store I/O failure) or when
// ctx is cancelled; ordinary per-URL failures are recorded on the Document
// row and never stop the loop.
func (e *Engine) Run(ctx context.Context) (Stats, failure.ClassifiedError) {
	var stats Stats

	for {
		select {
		case <-ctx.Done():
			return stats, nil
		default:
		}

		item, ok, err := e.store.NextPending()
		if err != nil {
			return stats, err
		}
		if !ok {
			return stats, nil
		}

		if err := e.store.UpdateQueueStatus(item.URL, store.QueueProcessing); err != nil {
			return stats, err
		}

		outcome, err := e.processOne(ctx, item)
		if err != nil {
			return stats, err
		}

		stats.PagesCrawled++
		if outcome.failed {
			stats.Errors++
		}
		stats.Assets += outcome.assetsWritten
	}
}

// processOutcome is processOne's internal bookkeeping; it never crosses a
// package boundary.
type processOutcome struct {
	failed        bool
	assetsWritten int
}

// processOne implements the ten-step per-URL dispatch. Any returned error is
// a Store failure severe enough to stop the whole crawl; every other
// failure mode (robots deny, fetch error, unsupported type, processing
// exception) is folded into the Document row's status and reported back via
// outcome.failed, not as an error.
func (e *Engine) processOne(ctx context.Context, item store.QueueItem) (processOutcome, failure.ClassifiedError) {
	u, parseErr := url.Parse(item.URL)
	if parseErr != nil {
		if err := e.store.UpdateQueueStatus(item.URL, store.QueueFailed); err != nil {
			return processOutcome{}, err
		}
		return processOutcome{failed: true}, nil
	}

	// Step 2: robots check.
	if e.robotsEnabled {
		decision, rerr := e.robot.Decide(*u)
		if rerr == nil {
			if !decision.Allowed {
				return e.finishTerminal(item, store.StatusBlockedByRobots, "", store.QueueCompleted)
			}
			if decision.CrawlDelay > 0 {
				e.limiter.SetCrawlDelay(u.Host, decision.CrawlDelay)
			}
		}
		// A robots-fetch failure is treated as fail-open: the page is not
		// blocked, matching the teacher's robots package (an unreachable
		// robots.txt never halts a crawl it would otherwise be free to do).
	}

	// Step 3: domain check (safety net; should never trigger in practice
	// since only in-domain URLs are enqueued).
	if len(e.allowedHosts) > 0 {
		if _, ok := e.allowedHosts[u.Hostname()]; !ok {
			if err := e.store.UpdateQueueStatus(item.URL, store.QueueCompleted); err != nil {
				return processOutcome{}, err
			}
			return processOutcome{}, nil
		}
	}

	// Step 4: section policy.
	if e.isExcludedSection(u.Path) {
		return e.finishTerminal(item, store.StatusSkippedByPolicy, "", store.QueueCompleted)
	}

	// Step 5: fetch, after per-host rate-limit spacing (requests to other
	// hosts do not count toward this host's delay).
	if delay := e.limiter.ResolveDelay(u.Host); delay > 0 {
		select {
		case <-ctx.Done():
			return e.finishTerminal(item, store.StatusFetchError, "crawl interrupted before fetch", store.QueueFailed)
		case <-time.After(delay):
		}
	}

	result, fetchErr := e.fetcher.Fetch(ctx, item.Depth, *u, e.retryParam)
	e.limiter.MarkLastFetchAsNow(u.Host)
	if fetchErr != nil {
		e.limiter.Backoff(u.Host)
		return e.finishTerminal(item, store.StatusFetchError, fetchErr.Error(), store.QueueFailed)
	}
	e.limiter.ResetBackoff(u.Host)

	if result.Code() < 200 || result.Code() >= 300 {
		return e.finishTerminal(item, store.StatusHTTP(result.Code()), "", store.QueueCompleted)
	}

	baseType := baseContentType(result.ContentType())

	// Step 6: content-type allowlist.
	if len(e.contentTypeAllowlist) > 0 && !contains(e.contentTypeAllowlist, baseType) {
		return e.finishTerminal(item, store.StatusUnsupportedType, "", store.QueueCompleted)
	}

	canonical := urlutil.Canonicalize(*u, e.hostAliases)

	// Step 7: upsert the base Document row (satisfies FKs for Link Edges
	// and FAQ Items about to be inserted).
	doc := store.Document{
		URL:           item.URL,
		CanonicalURL:  canonical.String(),
		Status:        store.StatusCrawled,
		DepthFromSeed: item.Depth,
		URLPath:       u.Path,
		ContentType:   baseType,
		CrawledAt:     time.Now(),
	}
	if err := e.store.UpsertDocument(doc); err != nil {
		return processOutcome{}, err
	}

	// Step 8: dispatch by content type. Failures here are recoverable at
	// the per-URL boundary (step 10): they become PROCESSING_ERROR, never
	// a Store-level fatal error, unless the dispatch handler itself hits a
	// Store write failure, which it propagates as such.
	assetsWritten, dispatchErr := e.dispatch(item, *u, baseType, &doc, result)
	if dispatchErr != nil {
		var storeErr *store.StoreError
		if asStoreError(dispatchErr, &storeErr) {
			return processOutcome{}, dispatchErr
		}
		doc.Status = store.StatusProcessingError
		doc.ErrorMessage = dispatchErr.Error()
		e.recordContentError(item.URL, &EngineError{
			Message:   dispatchErr.Error(),
			Retryable: dispatchErr.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseContentHandling,
		})
	}

	// Step 9: re-upsert with whatever dispatch accumulated onto doc.
	if err := e.store.UpsertDocument(doc); err != nil {
		return processOutcome{}, err
	}

	finalQueueStatus := store.QueueCompleted
	if dispatchErr != nil {
		finalQueueStatus = store.QueueFailed
	}
	if err := e.store.UpdateQueueStatus(item.URL, finalQueueStatus); err != nil {
		return processOutcome{}, err
	}

	return processOutcome{failed: dispatchErr != nil, assetsWritten: assetsWritten}, nil
}

// finishTerminal upserts a terminal-status Document row with no further
// processing and transitions the queue row, used by every early-exit branch
// (robots deny, section skip, HTTP error, fetch error, unsupported type).
func (e *Engine) finishTerminal(item store.QueueItem, status store.DocumentStatus, errMsg string, queueStatus store.QueueStatus) (processOutcome, failure.ClassifiedError) {
	doc := store.Document{
		URL:           item.URL,
		Status:        status,
		DepthFromSeed: item.Depth,
		ErrorMessage:  errMsg,
	}
	if err := e.store.UpsertDocument(doc); err != nil {
		return processOutcome{}, err
	}
	if err := e.store.UpdateQueueStatus(item.URL, queueStatus); err != nil {
		return processOutcome{}, err
	}
	return processOutcome{failed: queueStatus == store.QueueFailed}, nil
}

func (e *Engine) recordContentError(sourceURL string, err *EngineError) {
	if e.metadataSink == nil {
		return
	}
	e.metadataSink.RecordError(
		time.Now(),
		"engine",
		"Engine.processOne",
		mapEngineErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, sourceURL)},
	)
}

// isExcludedSection implements the §4.8 step-4 match: both the path and
// every configured token are lowercased and stripped of hyphens/spaces
// before the substring check.
func (e *Engine) isExcludedSection(path string) bool {
	normalizedPath := strings.ReplaceAll(strings.ToLower(path), "-", "")
	for _, section := range e.excludedSitemapSections {
		token := strings.ReplaceAll(strings.ToLower(section), " ", "")
		if token != "" && strings.Contains(normalizedPath, token) {
			return true
		}
	}
	return false
}

func baseContentType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(base)
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func asStoreError(err failure.ClassifiedError, target **store.StoreError) bool {
	if se, ok := err.(*store.StoreError); ok {
		*target = se
		return true
	}
	return false
}
