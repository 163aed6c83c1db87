package parse

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

// NormalizeURL standardizes a URL for use as a cache key
// It lowercases the scheme and host, removes default ports (80 for http, 443 for https) and drops the fragment
// Trailing slashes and query strings are kept: "whatsnew/" and "whatsnew" are different Sphinx pages
// Does not modify the input *url.URL
func NormalizeURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	normalized := *u

	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)

	host, port, err := net.SplitHostPort(normalized.Host)
	if err == nil {
		if (normalized.Scheme == "http" && port == "80") ||
			(normalized.Scheme == "https" && port == "443") {
			normalized.Host = host
		}
	}

	if normalized.Path == "" {
		normalized.Path = "/"
	}
	normalized.Fragment = ""
	normalized.RawFragment = ""

	return normalized.String()
}

// ParseAndNormalize parses an absolute URL and returns its normalized form together with the parsed URL
func ParseAndNormalize(urlStr string) (string, *url.URL, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", nil, err
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", nil, fmt.Errorf("%w: URL '%s' is not absolute", utils.ErrParsing, urlStr)
	}
	return NormalizeURL(parsed), parsed, nil
}

// ResolveReference resolves href (relative or absolute) against base the way a browser would
func ResolveReference(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base URL '%s': %w", utils.ErrParsing, base, err)
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL reference '%s': %w", utils.ErrParsing, href, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// LastPathSegment returns everything after the final '/' of the URL's path
// Returns "" for URLs whose path ends with a slash
func LastPathSegment(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
