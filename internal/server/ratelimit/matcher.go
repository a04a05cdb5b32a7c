package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the rule for path and method, or nil when none applies.
// Exact rules win over prefix rules (paths ending in "/"); the longest prefix wins.
// GET /health is always unlimited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{Path: path, Method: method}
	}

	for i := range configs {
		c := &configs[i]
		if c.Path == path && c.Method == method {
			return c
		}
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != method || !c.isPrefix() || !strings.HasPrefix(path, c.Path) {
			continue
		}
		if best == nil || len(c.Path) > len(best.Path) {
			best = c
		}
	}
	return best
}

func (c *EndpointConfig) isPrefix() bool {
	return strings.HasSuffix(c.Path, "/")
}
