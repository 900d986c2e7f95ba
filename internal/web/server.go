// Package web provides the HTTP server and handlers for the data dashboard.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/datadash/internal/config"
	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/metrics"
	mw "github.com/JonMunkholm/datadash/internal/web/middleware"
)

//go:embed static
var staticFiles embed.FS

// Server is the HTTP server for the dashboard.
type Server struct {
	service *core.Service
	cfg     *config.Config
	metrics *metrics.Metrics
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance. m may be nil.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Metrics) (*Server, error) {
	s := &Server{
		service: service,
		cfg:     cfg,
		metrics: m,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.AccessLog(s.metrics))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("static files: %w", err)
	}
	s.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled && s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.Post("/upload", s.handleUpload)

	s.router.Route("/s/{sessionID}", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/types", s.handleSetTypes)
		r.Get("/chart.svg", s.handleChart)
		r.Get("/describe", s.handleDescribe)
	})
	return nil
}

// Start begins listening for HTTP requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Charts are same-origin SVG images; no scripts are served.
			if enableCSP {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; img-src 'self' data:; script-src 'none'")
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
