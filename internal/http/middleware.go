package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestLogger attaches a request scoped logger to the context and records
// the request lifecycle. Every request carries a fresh request id so log
// lines across the layers can be correlated.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With(
				"request_id", uuid.NewString(),
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}
