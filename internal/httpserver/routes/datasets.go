package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/httpserver/handlers"
	"github.com/coastwatch-labs/catalog/internal/httpserver/mw"
)

func init() { Register("datasets", registerDatasets) }

func registerDatasets(r chi.Router, d deps.Deps) {
	read := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	read.Get("/datasets", handlers.Datasets(d))
	read.Get("/metadata", handlers.Metadata(d))
	read.Get("/stats", handlers.Stats(d))
	// Asset ids are dataset UIDs, usually URLs: match the whole tail.
	read.Get("/api/resolver/asset/*", handlers.ResolveAsset(d))

	r.With(triggerGuards(d, "datasets", nil)...).Delete("/datasets", handlers.DeleteDataset(d))
}
