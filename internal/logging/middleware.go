package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware logs every request and stores a request-scoped logger in the
// request context for handlers to pick up with FromContext.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			requestLogger := logger.WithFields(map[string]interface{}{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote":     r.RemoteAddr,
			})
			requestLogger.Debug("Request started")

			ctx := (&CtxLogger{requestLogger}).WithContext(r.Context())
			next.ServeHTTP(ww, r.WithContext(ctx))

			latency := time.Since(start)
			fields := map[string]interface{}{
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"latency_ms": float64(latency.Microseconds()) / 1000.0,
				"user_agent": r.UserAgent(),
				"protocol":   r.Proto,
			}

			completed := requestLogger.WithFields(fields)
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				completed.Error("Request failed", map[string]interface{}{"error": http.StatusText(ww.Status())})
			case ww.Status() >= http.StatusBadRequest:
				completed.Warn("Request rejected", map[string]interface{}{"error": http.StatusText(ww.Status())})
			default:
				completed.Info("Request completed")
			}
		})
	}
}
