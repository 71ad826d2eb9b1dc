package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
	"github.com/eyabmansour/pfe-licence-api/internal/logger"
)

type contextKey string

const callerKey contextKey = "caller_id"

// callerID extracts the authenticated user id placed on the context by
// requireCaller.
func callerID(r *http.Request) int64 {
	id, _ := r.Context().Value(callerKey).(int64)
	return id
}

// requireCaller reads the X-User-ID header set by the gateway and puts
// the caller id on the request context. Requests without it are 400.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, apperrors.Validation("missing or invalid X-User-ID header"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, id)))
	})
}

// requestLogger logs one line per request with method, path, status and
// duration, tagged with a generated request id.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := logger.GenerateRequestID()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("http_request", "Request handled", requestID, map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}
