package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// Logger logs every request with a generated request ID and records its
// latency per route pattern.
func Logger(log *logger.Logger, m *metrics.Manager) func(http.Handler) http.Handler {
	requestLogger := log.Named("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			ctx := context.WithValue(r.Context(), RequestIDCtxKey, requestID)
			next.ServeHTTP(rec, r.WithContext(ctx))

			elapsed := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			if m != nil {
				m.APILatency.WithLabelValues(route).Observe(elapsed.Seconds())
			}
			requestLogger.Info("Request handled",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", elapsed),
			)
		})
	}
}
