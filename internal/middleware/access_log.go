package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"caregiver-assistant/internal/platform/logger"
)

// RequestRecorder lo implementa metrics.Metrics.
type RequestRecorder interface {
	RecordRequest(method, route string, status int, d time.Duration)
}

// AccessLog loguea cada request con el request id de chimw.RequestID.
// rec puede ser nil.
func AccessLog(log logger.Logger, rec RequestRecorder) func(http.Handler) http.Handler {
	log = logger.OrNop(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)

			if rec != nil {
				rec.RecordRequest(r.Method, route, status, elapsed)
			}

			fields := map[string]any{
				"request_id": chimw.GetReqID(r.Context()),
				"method":     r.Method,
				"route":      route,
				"status":     status,
				"bytes":      ww.BytesWritten(),
				"elapsed_ms": elapsed.Milliseconds(),
			}
			if status >= 500 {
				log.Warn("http request", fields)
				return
			}
			log.Debug("http request", fields)
		})
	}
}
