package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain.ErrNotFound to 404 and anything else to 500,
// logging only the latter.
func writeError(w http.ResponseWriter, d deps.Deps, err error) {
	if isNotFound(err) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	d.Logger.Error("request failed", logger.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
