package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/djnacci/backend/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// MetricsMiddleware records request count and latency per chi route pattern.
// Unmatched paths are grouped under "unmatched" to keep label cardinality bounded.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := newStatusRecorder(w)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		metrics.RecordRequest(r.Method, route, strconv.Itoa(ww.statusCode), time.Since(start).Seconds())
	})
}
