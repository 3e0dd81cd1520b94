package mw

import (
	"net/http"
	"strings"

	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/utils"
)

// EnforceHost serves only requests whose Host (port ignored, any case)
// matches an allowed host or a "*.example.org" pattern. An empty list
// disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	patterns := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			patterns = append(patterns, h)
		}
	}
	if len(patterns) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(utils.ParseHostNoPort(r.Host))
			for _, pattern := range patterns {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("host rejected",
				logger.String("host", r.Host),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path))
			w.WriteHeader(http.StatusForbidden)
		})
	}
}

// matchHost reports whether host equals pattern or, for "*.example.org",
// is a strict subdomain of example.org.
func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if suffix, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		return len(host) > len(suffix) && strings.HasSuffix(host, suffix)
	}
	return false
}
