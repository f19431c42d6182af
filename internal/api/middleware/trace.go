package middleware

import (
	"net/http"

	"github.com/calvora/conduit/internal/api/shared"
)

// TraceID attaches a fresh trace ID to every request's context so log lines
// and error responses produced downstream can be correlated.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
