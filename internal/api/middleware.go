package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// LogRequests logs method, URI and latency of every request. The
// ResponseWriter is passed through untouched so websocket upgrades work.
func LogRequests(logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("Request", "method", r.Method, "uri", r.RequestURI, "duration", time.Since(start))
		})
	}
}
