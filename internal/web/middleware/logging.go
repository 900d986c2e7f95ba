// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datadash/internal/logging"
	"github.com/JonMunkholm/datadash/internal/metrics"
)

// unmatchedRoute labels requests that matched no route, keeping metric
// cardinality bounded.
const unmatchedRoute = "unmatched"

// AccessLog logs every request and records it in m, which may be nil.
//
// Requests are labelled by chi's route pattern rather than the raw path, so
// session IDs do not leak into metric labels. Server errors log at error
// level, client errors at warn, everything else at info.
//
// Log fields:
//   - method, path, route: what was requested
//   - status: HTTP response status code
//   - duration_ms: Request processing time in milliseconds
//   - ip: Client IP address after TrustedRealIP
func AccessLog(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := routePattern(r)
			m.HTTPRequest(route, r.Method, ww.status, duration)

			level := slog.LevelInfo
			switch {
			case ww.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case ww.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			logging.FromContext(r.Context()).Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", route,
				"status", ww.status,
				"duration_ms", duration.Milliseconds(),
				"ip", r.RemoteAddr,
			)
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap provides access to the underlying ResponseWriter for
// http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
