package middleware

import (
	"net/http"
	"strconv"
	"time"

	"eventconnect/internal/metrics"
)

// unmatchedRoute labels requests that matched no registered pattern.
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route pattern. It must wrap
// the ServeMux directly: the mux sets r.Pattern on the request it was given.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveRequest(r.Method, route, strconv.Itoa(wrapped.status), time.Since(start).Seconds())
	})
}
