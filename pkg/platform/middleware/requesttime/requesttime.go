// Package requesttime pins one "now" per HTTP request so the request
// transition, its audit entry and the response all carry the same timestamp.
package requesttime

import (
	"net/http"
	"time"

	"kafkaportal/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
