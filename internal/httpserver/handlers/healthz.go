package handlers

import (
	"net/http"
	"time"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	Service       string  `json:"service"`
	Store         string  `json:"store"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Healthz is the liveness probe. It names the configured store backend
// without contacting it; /readyz does that.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			Service:       "catalog",
			Store:         d.StoreBackend,
			UptimeSeconds: now().Sub(d.StartTime).Seconds(),
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		})
	}
}
