package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"monev/internal/backend"
	"monev/internal/cache"
	"monev/internal/cli"
	apphttp "monev/internal/http"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("monev")
	cfg := cli.LoadAndValidateConfig(logger.Logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	if err := backendCfg.Validate(); err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	result, err := backend.NewFactory(logger.Logger).CreateBackend(startCtx, backendCfg)
	startCancel()
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "driver", cfg.DatabaseDriver)
		os.Exit(1)
	}

	opts := []apphttp.Option{
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
	}

	cacheManager := cache.NewManager(logger.Logger)
	if result.Snapshots != nil {
		cacheManager.Register(result.Snapshots)
		cacheManager.StartCleanup(cfg.CacheTTL)
		opts = append(opts, apphttp.WithCacheStats(result.Snapshots.Stats))
	}

	srv := apphttp.NewServer(":"+cfg.Port, result.Service, opts...)
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting monev server",
		"port", cfg.Port,
		"driver", cfg.DatabaseDriver,
		"publishing", result.Publishing,
		"cache_ttl", cfg.CacheTTL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
