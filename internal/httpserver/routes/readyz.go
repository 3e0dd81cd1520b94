package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/httpserver/handlers"
	"github.com/coastwatch-labs/catalog/internal/httpserver/mw"
)

func init() { Register("readyz", registerReadyz) }

func registerReadyz(r chi.Router, d deps.Deps) {
	probe := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	probe.Get("/readyz", handlers.Readyz(d))
	probe.Get("/infra", handlers.Infra(d))
}
