package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cuesynth/internal/logging"
	"cuesynth/internal/services"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeUnsupportedKind = "UNSUPPORTED_KIND"
	CodeNotFound        = "NOT_FOUND"
	CodeInternal        = "INTERNAL_ERROR"
)

// RequestIDMiddleware tags each request with a short ID, echoed in the
// X-Request-ID header.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()[:8]
			}
			ctx := services.WithRequestID(r.Context(), requestID)
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RecoveryMiddleware turns handler panics into 500 responses.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logging.ErrorWithContext(logging.WithContext(r.Context(), logger), "panic recovered", logging.EventHTTPPanic,
						logging.Any("panic", rec),
						logging.String("path", r.URL.Path),
					)
					WriteError(w, r, http.StatusInternalServerError, "internal server error", CodeInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logging.WithContext(r.Context(), logger).Info("http request",
				logging.String("method", r.Method),
				logging.String("path", r.URL.Path),
				logging.Int("status", wrapped.status),
				logging.Duration("duration", time.Since(start)),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// WriteJSON encodes data with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an ErrorResponse tagged with the request ID.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message, code string) {
	requestID, _ := services.RequestIDFromContext(r.Context())
	WriteJSON(w, status, ErrorResponse{Error: message, Code: code, RequestID: requestID})
}

// writeServiceError maps a sentinel-tagged error to a status and code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnsupportedKind):
		WriteError(w, r, http.StatusBadRequest, err.Error(), CodeUnsupportedKind)
	case errors.Is(err, services.ErrValidation):
		WriteError(w, r, http.StatusBadRequest, err.Error(), CodeInvalidRequest)
	case errors.Is(err, services.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, err.Error(), CodeNotFound)
	default:
		WriteError(w, r, http.StatusInternalServerError, err.Error(), CodeInternal)
	}
}
