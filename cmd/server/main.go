package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/trcsocial/shopify-csv-uploader/internal/config"
	"github.com/trcsocial/shopify-csv-uploader/internal/core"
	"github.com/trcsocial/shopify-csv-uploader/internal/juno"
	"github.com/trcsocial/shopify-csv-uploader/internal/logging"
	"github.com/trcsocial/shopify-csv-uploader/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"upload_max_file_size", cfg.Upload.MaxFileSize,
		"juno_remote_enabled", cfg.Juno.RemoteEnabled(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Catalog metadata resolver; with no base URL it runs on the
	// deterministic fallback record only.
	resolver := juno.New(cfg.Juno.BaseURL, cfg.Juno.APIKey, juno.WithTimeout(cfg.Juno.Timeout))
	if cfg.Juno.RemoteEnabled() {
		slog.Info("juno catalog lookups enabled", "base_url", cfg.Juno.BaseURL)
	} else {
		slog.Info("juno catalog lookups disabled, using fallback metadata")
	}

	service := core.NewService(resolver)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
