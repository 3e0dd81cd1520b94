package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz is ready when the store answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := d.Store.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
