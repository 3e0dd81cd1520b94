package mw

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/coastwatch-labs/catalog/internal/logger"
)

// statusWriter captures status code and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Log writes one access line per request. Server errors log at Warn;
// quietPaths (probes) log at Debug unless they fail. Harvest targets are
// logged as service_id / provider so triggers can be traced to their jobs.
func Log(loggerClient logger.Logger, quietPaths ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(ww, r)

			if ww.status == 0 {
				ww.status = http.StatusOK
			}
			fields := []logger.Field{
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", ww.status),
				logger.Int("bytes", ww.bytes),
				logger.Duration("duration", time.Since(start)),
				logger.String("remote_ip", r.RemoteAddr),
				logger.String("user_agent", r.UserAgent()),
				logger.String("request_id", middleware.GetReqID(r.Context())),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					fields = append(fields, logger.String("route", pattern))
				}
				if id := rctx.URLParam("serviceID"); id != "" {
					fields = append(fields, logger.String("service_id", id))
				}
				if p := rctx.URLParam("provider"); p != "" {
					fields = append(fields, logger.String("provider", p))
				}
			}

			switch {
			case ww.status >= http.StatusInternalServerError:
				loggerClient.Warn("http_request", fields...)
			case slices.Contains(quietPaths, r.URL.Path):
				loggerClient.Debug("http_request", fields...)
			default:
				loggerClient.Info("http_request", fields...)
			}
		})
	}
}
