// Package server normalizes and validates HTTP origins for WebSocket
// upgrade requests to enforce configured access control.
package server

import (
	"log"
	"net/http"
	"net/url"
	"strings"
)

// originPolicy is the compiled form of Config.AllowedOrigins: a set of
// normalized scheme://host entries plus the "*" wildcard.
type originPolicy struct {
	allowAll bool
	entries  map[string]struct{}
	ordered  []string
}

func newOriginPolicy(allowed []string) originPolicy {
	policy := originPolicy{entries: make(map[string]struct{}, len(allowed))}

	for _, origin := range allowed {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		if trimmed == "*" {
			policy.allowAll = true
			continue
		}

		normalized, ok := normalizeOrigin(trimmed)
		if !ok {
			log.Printf("Ignoring invalid origin in configuration: %q", origin)
			continue
		}
		if _, dup := policy.entries[normalized]; dup {
			continue
		}
		policy.entries[normalized] = struct{}{}
		policy.ordered = append(policy.ordered, normalized)
	}

	return policy
}

// allowed returns the normalized allow-list in configuration order.
func (p originPolicy) allowed() []string {
	return append([]string(nil), p.ordered...)
}

func (p originPolicy) permits(origin string) bool {
	if p.allowAll {
		return true
	}
	_, ok := p.entries[origin]
	return ok
}

// normalizeOrigin lowercases and strips an origin down to scheme://host.
func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

func isOriginAllowed(r *http.Request) bool {
	header := r.Header.Get("Origin")
	if header == "" {
		return false
	}

	normalized, ok := normalizeOrigin(header)
	if !ok {
		return false
	}

	configMu.RLock()
	defer configMu.RUnlock()
	return origins.permits(normalized)
}

func checkOrigin(r *http.Request) bool {
	if isOriginAllowed(r) {
		return true
	}

	log.Printf("Blocked WebSocket connection from disallowed origin: %q", r.Header.Get("Origin"))
	return false
}
