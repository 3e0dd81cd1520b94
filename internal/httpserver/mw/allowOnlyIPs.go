package mw

import (
	"net/http"

	"github.com/coastwatch-labs/catalog/internal/logger"
	"github.com/coastwatch-labs/catalog/internal/utils"
)

// AllowOnlyCIDRS guards operator endpoints (probes, reload, harvest
// triggers, deletes) by client IP. An empty list disables the check.
// trustProxy resolves the client from X-Forwarded-For / X-Real-IP.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("client rejected",
					logger.String("client_ip", ip),
					logger.String("remote_addr", r.RemoteAddr),
					logger.Bool("trust_proxy", trustProxy),
					logger.String("method", r.Method),
					logger.String("path", r.URL.Path))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
