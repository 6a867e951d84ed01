package engine

import (
	"net/http"

	"github.com/rohmanhakim/sitemap-crawler/internal/config"
	"github.com/rohmanhakim/sitemap-crawler/internal/extractor"
	"github.com/rohmanhakim/sitemap-crawler/internal/fetcher"
	"github.com/rohmanhakim/sitemap-crawler/internal/mdconvert"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/robots"
	"github.com/rohmanhakim/sitemap-crawler/internal/sanitizer"
	"github.com/rohmanhakim/sitemap-crawler/internal/storage"
	"github.com/rohmanhakim/sitemap-crawler/internal/store"
	"github.com/rohmanhakim/sitemap-crawler/pkg/limiter"
	"github.com/rohmanhakim/sitemap-crawler/pkg/retry"
	"github.com/rohmanhakim/sitemap-crawler/pkg/timeutil"
)

// Stats accumulates the crawl-wide counters reported to
// metadata.CrawlFinalizer once the loop stops.
type Stats struct {
	PagesCrawled int
	Errors       int
	Assets       int
}

// Engine is the per-URL orchestrator: it pulls frontier rows from Store and
// drives them through robots/domain/policy admission, fetch, content
// dispatch and link discovery. It holds no crawl state of its own beyond
// the rate limiter's host timings; the Store is the single source of truth,
// which is what makes a restart just "keep pulling pending rows".
type Engine struct {
	store          *store.Store
	robot          robots.Robot
	fetcher        fetcher.Fetcher
	docExtractor   extractor.DomExtractor
	sanitizer      sanitizer.HtmlSanitizer
	converter      mdconvert.ConvertRule
	artifactWriter storage.ArtifactWriter
	limiter        *limiter.ConcurrentRateLimiter
	metadataSink   metadata.MetadataSink

	allowedHosts            map[string]struct{}
	hostAliases             map[string]string
	excludedSitemapSections []string
	contentTypeAllowlist    []string
	maxDepthFAQ             int
	maxDepthGeneral         int
	outputDirectories       map[string]string
	maxAssetSize            int64
	userAgent               string
	robotsEnabled           bool
	retryParam              retry.RetryParam
}

// New wires an Engine from cfg, following the same construction-then-Init
// two-step every stage in this codebase uses: build each stage with the
// shared MetadataSink, then Init the ones that need network/runtime state.
func New(cfg config.Config, sink metadata.MetadataSink, st *store.Store) Engine {
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	htmlFetcher := fetcher.NewHtmlFetcher(sink)
	htmlFetcher.Init(httpClient, cfg.UserAgent())

	robot := robots.NewCachedRobot(sink)
	robot.Init(cfg.UserAgent())

	docExtractor := extractor.NewDomExtractor(sink, cfg.MainContentSelectors()...)
	docExtractor.SetExtractParam(extractor.ExtractParam{
		LinkDensityThreshold: cfg.LinkDensityThreshold(),
		BodySpecificityBias:  cfg.BodySpecificityBias(),
	})

	backoffParam := timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	)

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())
	rateLimiter.SetBackoffParam(backoffParam)

	artifactWriter := storage.NewLocalArtifactWriter(sink)

	return Engine{
		store:          st,
		robot:          &robot,
		fetcher:        &htmlFetcher,
		docExtractor:   docExtractor,
		sanitizer:      sanitizer.NewHTMLSanitizer(sink),
		converter:      mdconvert.NewRule(sink),
		artifactWriter: &artifactWriter,
		limiter:        rateLimiter,
		metadataSink:   sink,

		allowedHosts:            cfg.AllowedHosts(),
		hostAliases:             cfg.HostAliases(),
		excludedSitemapSections: cfg.ExcludedSitemapSections(),
		contentTypeAllowlist:    cfg.ContentTypeAllowlist(),
		maxDepthFAQ:             cfg.MaxDepthFAQ(),
		maxDepthGeneral:         cfg.MaxDepthGeneral(),
		outputDirectories:       cfg.OutputDirectories(),
		maxAssetSize:            cfg.MaxAssetSize(),
		userAgent:               cfg.UserAgent(),
		robotsEnabled:           cfg.RobotsEnabled(),
		retryParam: retry.NewRetryParam(
			cfg.BaseDelay(),
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.MaxAttempt(),
			backoffParam,
		),
	}
}

// Test helper functions to substitute fakes for the network-facing stages
// from engine_test, mirroring the internal/cli package's ForTest pattern.

func (e *Engine) SetFetcherForTest(f fetcher.Fetcher) {
	e.fetcher = f
}

func (e *Engine) SetRobotForTest(r robots.Robot) {
	e.robot = r
}

func (e *Engine) SetArtifactWriterForTest(w storage.ArtifactWriter) {
	e.artifactWriter = w
}

func (e *Engine) SetRetryParamForTest(p retry.RetryParam) {
	e.retryParam = p
}
