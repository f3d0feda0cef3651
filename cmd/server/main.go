package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leveltrack/leveltrack/internal/api"
	"github.com/leveltrack/leveltrack/internal/config"
	"github.com/leveltrack/leveltrack/internal/factory"
	redisstorage "github.com/leveltrack/leveltrack/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Build factory config from environment
	factoryCfg := factory.Config{
		StorageType: cfg.StorageType,
		PostgresDSN: cfg.PostgresDSN,
		ExportDir:   cfg.ExportDir,
		Logger:      logger,
	}

	if cfg.StorageType == config.StorageTypeRedis {
		if cfg.RedisURL == "" {
			logger.Error("LEVELTRACK_REDIS_URL required when LEVELTRACK_STORAGE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		ContentService: app.ContentService,
		Tracker:        app.Tracker,
		Exporter:       app.Exporter,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr
	serverConfig.ShutdownTimeout = cfg.ShutdownTimeout
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Let in-flight exports finish before closing storage
	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer drainCancel()
	if err := app.Runner.Shutdown(drainCtx); err != nil {
		logger.Warn("background tasks did not drain cleanly", slog.String("error", err.Error()))
	}

	if err := app.Storage.Close(); err != nil {
		logger.Warn("storage close error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
