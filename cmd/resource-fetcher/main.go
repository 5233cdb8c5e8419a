package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vertextoedge/resource-fetcher/internal/adapter/sqlite"
	"github.com/vertextoedge/resource-fetcher/internal/config"
	"github.com/vertextoedge/resource-fetcher/internal/fetch"
	"github.com/vertextoedge/resource-fetcher/internal/logger"
	"github.com/vertextoedge/resource-fetcher/internal/service/maintenance"
	"github.com/vertextoedge/resource-fetcher/internal/service/server"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	zapLogger.Info("starting resource-fetcher",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// The work directory must exist up front; fetches never create it.
	if info, err := os.Stat(cfg.Fetch.WorkDir); err != nil || !info.IsDir() {
		zapLogger.Fatal("work directory does not exist",
			zap.String("work_dir", cfg.Fetch.WorkDir))
	}

	// Open database
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Fetch.WorkDir, "fetches.db")
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err), zap.String("path", dbPath))
	}
	defer store.Close()

	// Create fetcher
	fetcher := fetch.NewFetcher(fetch.DefaultRules(), zapLogger)
	fetchOpts := fetch.Options{
		Timeout:         cfg.Fetch.GetTimeout(),
		VerifyTLS:       cfg.Fetch.VerifyTLS,
		FollowRedirects: cfg.Fetch.FollowRedirects,
		Policy: fetch.Policy{
			AllowedContentTypes: cfg.Fetch.AllowedContentTypes,
			MaxContentLength:    cfg.Fetch.MaxContentLength,
		},
	}

	// Create maintenance service
	maintenanceCfg := &maintenance.Config{
		CleanupInterval: cfg.Maintenance.GetCleanupInterval(),
		TempFileMaxAge:  cfg.Maintenance.GetTempFileMaxAge(),
		HistoryMaxAge:   cfg.Maintenance.GetHistoryMaxAge(),
	}
	maintenanceService := maintenance.New(maintenanceCfg, store, cfg.Fetch.WorkDir, zapLogger)

	// Create HTTP server
	serverCfg := &server.Config{
		BindAddr:      cfg.HTTP.BindAddr,
		WorkDir:       cfg.Fetch.WorkDir,
		FetchInterval: cfg.HTTP.GetFetchInterval(),
		ReadTimeout:   cfg.HTTP.GetReadTimeout(),
		WriteTimeout:  cfg.HTTP.GetWriteTimeout(),
		IdleTimeout:   cfg.HTTP.GetIdleTimeout(),
	}
	httpServer := server.New(serverCfg, fetcher, fetchOpts, store, zapLogger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start HTTP server
	go func() {
		if err := httpServer.Start(); err != nil {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Start maintenance service
	go func() {
		if err := maintenanceService.Start(ctx); err != nil && err != context.Canceled {
			zapLogger.Error("maintenance service stopped with error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	zapLogger.Info("application started successfully",
		zap.String("http_addr", cfg.HTTP.BindAddr),
		zap.String("work_dir", cfg.Fetch.WorkDir),
	)
	<-sigChan

	zapLogger.Info("shutdown signal received, stopping services...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	maintenanceService.Stop()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		zapLogger.Error("failed to stop HTTP server gracefully", zap.Error(err))
	}

	zapLogger.Info("application stopped successfully")
}
