package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/datadash/internal/config"
	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/logging"
	"github.com/JonMunkholm/datadash/internal/metrics"
	"github.com/JonMunkholm/datadash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"max_file_size", cfg.Upload.MaxFileSize,
		"analyses_max_concurrent", cfg.Upload.MaxConcurrent,
		"encodings", cfg.Ingest.Encodings,
		"session_ttl", cfg.Session.TTL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	service, err := core.NewService(cfg, m)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server, err := web.NewServer(service, cfg, m)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		service.StartSessionJanitor(gctx)
		return nil
	})

	g.Go(server.Start)

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let in-flight analyses finish before closing connections
		status := service.Limiter().Status()
		if status.Active > 0 {
			slog.Info("waiting for analyses to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("analyses did not complete in time", "error", err)
			} else {
				slog.Info("all analyses completed")
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
