package urlutil

import (
	"net/url"
	"sort"
	"strings"
)

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Host is rewritten through hostAliases when the bare host (without port) matches a key
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Query parameters are kept but sorted by key so equivalent query strings compare equal
//   - An empty query (a bare "?") is dropped
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// hostAliases may be nil.
//
// Properties:
//   - Pure: no hidden state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url, a), a) == Canonicalize(url, a)
//   - Context-free: does not depend on crawl history
func Canonicalize(sourceUrl url.URL, hostAliases map[string]string) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	// Lowercase scheme and host
	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	// Apply host aliasing before port stripping so aliases are keyed on the bare hostname
	if alias, ok := hostAliases[canonical.Hostname()]; ok {
		if port := canonical.Port(); port != "" {
			canonical.Host = lowerASCII(alias) + ":" + port
		} else {
			canonical.Host = lowerASCII(alias)
		}
	}

	// Remove default port if present
	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	// Clean the path: remove trailing slashes (except root)
	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	// Remove fragment (anchor)
	canonical.Fragment = ""
	canonical.RawFragment = ""

	// Sort query parameters by key so differently-ordered but equivalent
	// query strings canonicalize identically. Parameters are kept, not dropped.
	canonical.ForceQuery = false
	if canonical.RawQuery != "" {
		canonical.RawQuery = sortedQuery(canonical.RawQuery)
	}

	return canonical
}

// sortedQuery re-encodes a raw query string with its parameters ordered by key,
// preserving repeated values for the same key in their original relative order.
func sortedQuery(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil || len(values) == 0 {
		return rawQuery
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		for _, v := range values[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
		_ = i
	}
	return b.String()
}

// Resolve turns a possibly-relative URL into an absolute URL against the given
// scheme and host. If u is already absolute, it is returned unchanged.
func Resolve(u url.URL, scheme string, host string) url.URL {
	if u.IsAbs() || u.Host != "" {
		return u
	}

	base := url.URL{Scheme: scheme, Host: host}
	resolved := base.ResolveReference(&u)
	return *resolved
}

// FilterByHost keeps only the URLs whose host matches the given host, discarding
// links that point off-site.
func FilterByHost(host string, urls []url.URL) []url.URL {
	var filtered []url.URL
	for _, u := range urls {
		if lowerASCII(u.Hostname()) == lowerASCII(host) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
