package log

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"go.uber.org/zap"
)

// HTTPMiddleware logs one debug line per request, or a warning for server
// errors, with method, path, status, duration and response size.
func HTTPMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", m.Code,
				"duration_ms", m.Duration.Milliseconds(),
				"size", m.Written,
				"remote_addr", r.RemoteAddr,
			}
			if m.Code >= http.StatusInternalServerError {
				logger.Warnw("HTTP request failed", fields...)
				return
			}
			logger.Debugw("HTTP request", fields...)
		})
	}
}
