package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/httpserver/handlers"
)

func init() { Register("reload", registerReload) }

func registerReload(r chi.Router, d deps.Deps) {
	r.With(triggerGuards(d, "reload", nil)...).Post("/reload", handlers.Reload(d))
}
