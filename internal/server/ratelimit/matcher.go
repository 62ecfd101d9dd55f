package ratelimit

import (
	"path"
	"strings"
)

// unmetered is the rule for routes that are never limited.
var unmetered = EndpointConfig{}

// Rule precedence, strongest first.
const (
	matchNone = iota
	matchPrefix
	matchPattern
	matchExact
)

// MatchEndpoint picks the rule for a request, or nil when none applies.
// An exact path beats a "*" pattern (one segment per star), which beats a
// prefix rule ending in "/". Among prefix rules the longest wins.
// GET /health is always unmetered.
func MatchEndpoint(requestPath, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && requestPath == "/health" {
		rule := unmetered
		return &rule
	}

	var best *EndpointConfig
	bestKind := matchNone
	for i := range configs {
		rule := &configs[i]
		if rule.Method != method {
			continue
		}
		kind := matchKind(rule.Path, requestPath)
		if kind > bestKind || (kind == matchPrefix && bestKind == matchPrefix && len(rule.Path) > len(best.Path)) {
			best, bestKind = rule, kind
		}
	}
	return best
}

func matchKind(pattern, requestPath string) int {
	switch {
	case pattern == requestPath:
		return matchExact
	case strings.Contains(pattern, "*"):
		if ok, err := path.Match(pattern, requestPath); err == nil && ok {
			return matchPattern
		}
	case strings.HasSuffix(pattern, "/") && strings.HasPrefix(requestPath, pattern):
		return matchPrefix
	}
	return matchNone
}
