package robots

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/robots/cache"
)

/*
Responsibilities

- Fetch robots.txt per host
- Cache rules for crawl duration
- Enforce allow/disallow rules before enqueue

Robots checks occur before a URL enters the frontier.
*/

// Robot is the scheduler-facing contract for a robots.txt admission check.
type Robot interface {
	Init(userAgent string)
	Decide(u url.URL) (Decision, *RobotsError)
}

// CachedRobot is a Robot backed by a RobotsFetcher whose cache persists for
// the lifetime of the CachedRobot, so a host's robots.txt is fetched at
// most once per crawl.
type CachedRobot struct {
	metadataSink metadata.MetadataSink
	fetcher      *RobotsFetcher
	userAgent    string
}

// NewCachedRobot builds a CachedRobot that reports fetch/error events to
// sink. Call Init or InitWithCache before the first Decide.
func NewCachedRobot(sink metadata.MetadataSink) CachedRobot {
	return CachedRobot{metadataSink: sink}
}

// Init prepares the robot with the given user agent and an in-memory cache.
func (r *CachedRobot) Init(userAgent string) {
	r.InitWithCache(userAgent, cache.NewMemoryCache())
}

// InitWithCache prepares the robot with the given user agent and cache
// implementation, allowing callers to share or inspect the cache.
func (r *CachedRobot) InitWithCache(userAgent string, c cache.Cache) {
	r.userAgent = userAgent
	r.fetcher = NewRobotsFetcherWithClient(r.metadataSink, userAgent, &http.Client{Timeout: 30 * time.Second}, c)
}

// Decide fetches (or reuses the cached) robots.txt for u's host and
// evaluates whether u may be crawled under this robot's user agent.
func (r *CachedRobot) Decide(u url.URL) (Decision, *RobotsError) {
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}

	result, err := r.fetcher.Fetch(context.Background(), scheme, u.Host)
	if err != nil {
		if r.metadataSink != nil {
			r.metadataSink.RecordError(
				time.Now(),
				"robots",
				"decide",
				mapRobotsErrorToMetadataCause(err),
				err.Error(),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrURL, u.String())},
			)
		}
		return Decision{}, err
	}

	ruleSet := MapResponseToRuleSet(result.Response, r.userAgent, result.FetchedAt)
	allowed, reason := decideAllowed(ruleSet, u.Path)

	var crawlDelay time.Duration
	if delay := ruleSet.CrawlDelay(); delay != nil {
		crawlDelay = *delay
	}

	return Decision{
		Url:        u,
		Allowed:    allowed,
		Reason:     reason,
		CrawlDelay: crawlDelay,
	}, nil
}

// decideAllowed applies the standard robots.txt precedence rule: the
// matching pattern with the longest raw length wins, and an Allow beats a
// Disallow of equal length.
func decideAllowed(rs ruleSet, path string) (bool, DecisionReason) {
	if !rs.hasGroups {
		return true, EmptyRuleSet
	}
	if !rs.matchedGroup {
		return true, UserAgentNotMatched
	}

	allowRules := rs.AllowRules()
	disallowRules := rs.DisallowRules()

	bestLen := -1
	bestAllowed := true
	matched := false

	for _, rule := range allowRules {
		if !matchesRobotsPattern(rule.Prefix(), path) {
			continue
		}
		if length := len(rule.Prefix()); length > bestLen {
			bestLen = length
			bestAllowed = true
			matched = true
		}
	}

	for _, rule := range disallowRules {
		if !matchesRobotsPattern(rule.Prefix(), path) {
			continue
		}
		if length := len(rule.Prefix()); length > bestLen {
			bestLen = length
			bestAllowed = false
			matched = true
		}
	}

	if !matched {
		return true, NoMatchingRules
	}
	if bestAllowed {
		return true, AllowedByRobots
	}
	return false, DisallowedByRobots
}

// matchesRobotsPattern implements robots.txt path matching: "*" matches any
// run of characters, and a trailing "$" anchors the pattern to the end of
// path.
func matchesRobotsPattern(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = strings.TrimSuffix(pattern, "$")
	}

	segments := strings.Split(pattern, "*")
	cursor := 0
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		pos := strings.Index(path[cursor:], segment)
		if pos == -1 {
			return false
		}
		if i == 0 && pos != 0 {
			return false
		}
		cursor += pos + len(segment)
	}

	if anchored {
		return cursor == len(path)
	}
	return true
}
