package transport

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging returns middleware that emits one structured log entry per
// request with method, path, status, duration and request ID. Server
// errors are logged at error level, client errors at warn level.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)),
			}

			level := slog.LevelInfo
			msg := "request completed"
			switch {
			case rec.status >= 500:
				level, msg = slog.LevelError, "request failed"
			case rec.status >= 400:
				level, msg = slog.LevelWarn, "request rejected"
			}
			logger.LogAttrs(r.Context(), level, msg, attrs...)
		})
	}
}
