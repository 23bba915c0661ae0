package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize bounds request bodies. Capture requests may
// carry a full rendered DOM, so the limit is generous.
const DefaultMaxRequestSize int64 = 8 << 20 // 8MB

// MaxRequestSize rejects oversized request bodies
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer r.Body.Close()

			next.ServeHTTP(w, r)
		})
	}
}
