// The financas binary serves the household finance web UI over the backend
// selected by configuration: remote, sqlite or memory.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/auth"
	"github.com/frankmaximo93/shared-financial-journey/internal/backend"
	"github.com/frankmaximo93/shared-financial-journey/internal/cli"
	"github.com/frankmaximo93/shared-financial-journey/internal/export"
	apphttp "github.com/frankmaximo93/shared-financial-journey/internal/http"
	"github.com/frankmaximo93/shared-financial-journey/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)
	registry := cli.BuildRegistry(logger, cfg)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(ctx, backendCfg, registry)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "type", backendCfg.Type)
		os.Exit(1)
	}

	// Spreadsheet export is optional; without configuration the endpoint
	// answers with a warning toast.
	var exporter export.BillExporter
	if client, err := export.NewFromEnv(ctx, registry); err == nil {
		exporter = client
		logger.Info("Spreadsheet export enabled")
	} else if !errors.Is(err, export.ErrNotConfigured) {
		logger.Warn("Spreadsheet export disabled", "error", err)
	}

	userID := ""
	if cfg.RemoteAccessToken != "" {
		if id, err := auth.UserID(cfg.RemoteAccessToken); err == nil {
			userID = id
		}
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:     ":" + cfg.Port,
		Source:   result.Source,
		Registry: registry,
		UserID:   userID,
		Exporter: exporter,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting server", "port", cfg.Port, "backend", backendCfg.Type)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
