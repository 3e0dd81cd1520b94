package routes

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type group struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []group

// Register adds a named route group with optional group-wide middlewares.
// Names must be unique.
func Register(name string, reg Registrar, mws ...Middleware) {
	for _, g := range registry {
		if g.name == name {
			panic("routes: duplicate group " + name)
		}
	}
	registry = append(registry, group{name: name, reg: reg, mws: mws})
}

// Groups lists the registered group names, sorted.
func Groups() []string {
	names := make([]string, 0, len(registry))
	for _, g := range registry {
		names = append(names, g.name)
	}
	sort.Strings(names)
	return names
}

// RegisterAll mounts every group. Called once from httpserver.NewRouter.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range registry {
		if len(g.mws) == 0 {
			g.reg(r, d)
			continue
		}
		g.reg(r.With(g.mws...), d)
	}
	d.Logger.Debug("routes registered", logger.Strings("groups", Groups()))
}
