package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/httpserver/handlers"
)

func init() { Register("healthz", registerHealthz) }

func registerHealthz(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
}
