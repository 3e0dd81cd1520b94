package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	ServicesLoaded *int   `json:"services_loaded,omitempty"`
	PendingJobs    *int64 `json:"pending_jobs,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store, the registry and the harvest queue.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"store":    checkStore(ctx, d),
			"registry": checkRegistry(ctx, d),
			"queue":    checkQueue(ctx, d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Components: components,
		})
	}
}

func overallStatus(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "critical" // nothing can be harvested or served
	}
	if registry, ok := components["registry"]; ok && !registry.OK {
		return "critical" // no services to harvest
	}
	if queue, ok := components["queue"]; ok && !queue.OK {
		return "degraded" // catalog readable, harvests stalled
	}
	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: d.StoreBackend, Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: d.StoreBackend}
}

func checkRegistry(ctx context.Context, d deps.Deps) componentStatus {
	services, err := d.Store.GetAllServices(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	n := 0
	for _, svc := range services {
		if !svc.Disabled {
			n++
		}
	}
	return componentStatus{OK: n > 0, ServicesLoaded: &n}
}

func checkQueue(ctx context.Context, d deps.Deps) componentStatus {
	pending, err := d.Queue.Len(ctx)
	if err != nil {
		return componentStatus{OK: false, Impact: "harvests-stalled", Error: err.Error()}
	}
	return componentStatus{OK: true, PendingJobs: &pending}
}
