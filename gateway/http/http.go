// Package http provides the HTTP plumbing shared by the gateway servers:
// request ids, CORS, access logging, body limits and error responses.
package http

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/barnslig/mediacccde-graphql/errors"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds ids accepted from clients.
const maxRequestIDLen = 128

type contextKey struct{ name string }

var (
	requestIDKey = contextKey{"request_id"}
	loggerKey    = contextKey{"logger"}
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one is outermost.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// getOrGenerateRequestID extracts request ID from headers or generates a new one
func getOrGenerateRequestID(r *http.Request) string {
	if reqID := r.Header.Get(RequestIDHeader); reqID != "" && len(reqID) <= maxRequestIDLen {
		return reqID
	}
	return uuid.NewString()
}

// RequestID tags every request with an id, echoes it in the response and
// stores it in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getOrGenerateRequestID(r)
		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the request id stored by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// LoggerFrom returns the request scoped logger stored by Logging, or
// slog.Default.
func LoggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// statusRecorder captures the response status for access logs
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logging attaches a request scoped logger carrying the request id and logs
// one line per request. It must run inside RequestID.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With("request_id", RequestIDFrom(r.Context()))
			rec := &statusRecorder{ResponseWriter: w}

			ctx := context.WithValue(r.Context(), loggerKey, reqLogger)
			next.ServeHTTP(rec, r.WithContext(ctx))

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			level := slog.LevelDebug
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			reqLogger.Log(r.Context(), level, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration", time.Since(start))
		})
	}
}

// CORS applies CORS headers for the allowed origins and answers preflight
// requests. "*" allows every origin.
func CORS(origins []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, allowedOrigin := range origins {
				if allowedOrigin == "*" || allowedOrigin == origin {
					allowed = true
					break
				}
			}

			if allowed {
				if origin != "" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LimitBody caps request bodies at maxBytes.
func LimitBody(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// StatusFor maps classified errors to HTTP status codes
func StatusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case stderrors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsFatal(err):
		return http.StatusInternalServerError
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, errors.ErrConnectionTimeout):
		return http.StatusGatewayTimeout
	case errors.IsTransient(err):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// SanitizeError returns a safe error message for external clients
func SanitizeError(err error) string {
	switch StatusFor(err) {
	case http.StatusRequestEntityTooLarge:
		return "request body too large"
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusGatewayTimeout:
		return "request timeout"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return "internal server error"
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a sanitized error response for err
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	WriteJSON(w, status, map[string]any{
		"error":  SanitizeError(err),
		"status": status,
	})
}

// AllowMethods rejects requests whose method is not listed.
func AllowMethods(methods ...string) Middleware {
	allow := strings.Join(methods, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, m := range methods {
				if r.Method == m {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Allow", allow)
			WriteJSON(w, http.StatusMethodNotAllowed, map[string]any{
				"error":  "method " + r.Method + " not allowed",
				"status": http.StatusMethodNotAllowed,
			})
		})
	}
}
