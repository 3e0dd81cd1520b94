package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coastwatch-labs/catalog/internal/domain"
	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

type enqueuedResponse struct {
	Enqueued int                `json:"enqueued"`
	Job      *domain.HarvestJob `json:"job,omitempty"`
}

// HarvestService enqueues one service. ?ignore_active=true also harvests
// an inactive service.
func HarvestService(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceID := chi.URLParam(r, "serviceID")

		ignoreActive := false
		if v := r.URL.Query().Get("ignore_active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				badRequest(w, fmt.Sprintf("invalid ignore_active %q", v))
				return
			}
			ignoreActive = b
		}

		job, err := d.Harvests.EnqueueService(r.Context(), serviceID, ignoreActive)
		if err != nil {
			writeError(w, d, err)
			return
		}

		d.Logger.Info("harvest requested",
			logger.String("service_id", serviceID),
			logger.String("job_id", job.ID),
			logger.Bool("ignore_active", ignoreActive))
		writeJSON(w, http.StatusAccepted, enqueuedResponse{Enqueued: 1, Job: &job})
	}
}

// HarvestProvider enqueues the active services of one data provider.
func HarvestProvider(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")

		n, err := d.Harvests.EnqueueProvider(r.Context(), provider)
		if err != nil {
			writeError(w, d, err)
			return
		}
		if n == 0 {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no active services for provider " + provider})
			return
		}
		writeJSON(w, http.StatusAccepted, enqueuedResponse{Enqueued: n})
	}
}

// HarvestAll enqueues a full harvest cycle.
func HarvestAll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := d.Harvests.EnqueueAll(r.Context())
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusAccepted, enqueuedResponse{Enqueued: n})
	}
}

// HarvestRecord returns the last harvest of a service.
func HarvestRecord(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := d.Store.GetHarvest(r.Context(), chi.URLParam(r, "serviceID"))
		if err != nil {
			writeError(w, d, err)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}
