package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/httpserver/handlers"
	"github.com/coastwatch-labs/catalog/internal/httpserver/mw"
)

func init() { Register("harvest", registerHarvest) }

// triggerGuards restrict endpoints that start work: caller IP, Host header,
// then a token bucket of its own per scope. key may be nil (client IP).
func triggerGuards(d deps.Deps, scope string, key func(*http.Request, bool) string) []Middleware {
	return []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Scope:             scope,
			Burst:             d.TriggerBurst,
			RefillPerIPPerMin: d.TriggerRefillPerM,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
			Key:               key,
			Now:               d.TimeNow,
		}, d.Logger),
	}
}

func registerHarvest(r chi.Router, d deps.Deps) {
	triggers := r.With(triggerGuards(d, "harvest", mw.HarvestTargetKey)...)
	triggers.Post("/harvest", handlers.HarvestAll(d))
	triggers.Post("/services/{serviceID}/harvest", handlers.HarvestService(d))
	triggers.Post("/providers/{provider}/harvest", handlers.HarvestProvider(d))

	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/harvests/{serviceID}", handlers.HarvestRecord(d))
}
