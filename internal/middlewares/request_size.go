package middlewares

import (
	"net/http"
)

// RequestSizeLimitMiddleware limits the size of request bodies
// maxRequestSize specifies the maximum request body size in bytes
func RequestSizeLimitMiddleware(maxRequestSize int64) func(http.Handler) http.Handler {
	return RequestSizeLimitByPathMiddleware(maxRequestSize, nil)
}

// RequestSizeLimitByPathMiddleware limits request bodies to maxRequestSize,
// except for the exact paths listed in pathLimits which get their own limit.
func RequestSizeLimitByPathMiddleware(maxRequestSize int64, pathLimits map[string]int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit := maxRequestSize
			if l, ok := pathLimits[r.URL.Path]; ok {
				limit = l
			}

			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":"request body too large"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
