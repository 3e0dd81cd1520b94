package handlers

import (
	"net/http"

	"github.com/coastwatch-labs/catalog/internal/httpserver/deps"
	"github.com/coastwatch-labs/catalog/internal/logger"
)

type triggerResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Reload triggers a manual reload of the service registry
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("manual registry reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, triggerResponse{Triggered: true, Message: "reload triggered"})
		default:
			d.Logger.Warn("registry reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, triggerResponse{Message: "reload already pending, please wait"})
		}
	}
}
