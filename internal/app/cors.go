package app

import (
	"net/url"
	"strings"
)

// originMatcher accepts origins whose host matches one of patterns. A
// pattern is an exact host, "*.example.com" or "localhost:*".
func originMatcher(patterns []string) func(string) bool {
	return func(origin string) bool {
		host := originHost(origin)
		for _, p := range patterns {
			if matchOriginPattern(strings.TrimSpace(p), host) {
				return true
			}
		}
		return false
	}
}

func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

func matchOriginPattern(pattern, host string) bool {
	switch {
	case pattern == "*" || pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
