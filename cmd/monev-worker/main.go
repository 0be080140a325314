package main

import (
	"context"
	"errors"
	"os"
	"time"

	"monev/internal/amqp"
	"monev/internal/backend"
	"monev/internal/cli"
	"monev/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("monev-worker")
	logger.Info("Starting monev-worker")

	cfg := cli.LoadAndValidateConfig(logger.Logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// The worker only reads: no change events of its own, and every export
	// must see the current rows.
	backendCfg.AMQPURL = ""
	backendCfg.CacheTTL = 0

	factory := backend.NewFactory(logger.Logger)
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	result, err := factory.CreateBackend(startCtx, backendCfg)
	if err != nil {
		startCancel()
		logger.Error("Failed to initialize backend", "error", err)
		os.Exit(1)
	}
	exporter, err := factory.CreateExporter(startCtx, backendCfg)
	startCancel()
	if err != nil {
		logger.Error("Failed to initialize spreadsheet exporter", "error", err)
		os.Exit(1)
	}
	if !cfg.ExportEnabled() {
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, exporting to memory only")
	}

	exportWorker := worker.NewExportWorker(result.Service, exporter)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("AMQP_URL not set, relying on periodic export only")
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	exportWorker.StartupExport(ctx)

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeChanges(ctx, exportWorker.HandleChange)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Change consumption stopped", "error", err)
			}
		}()
	}

	go exportWorker.RunPeriodic(ctx, cfg.ExportInterval)

	logger.Info("Worker running",
		"export_interval", cfg.ExportInterval,
		"consuming", amqpClient != nil,
		"spreadsheet", cfg.ExportEnabled())

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped", "exports", exportWorker.Exports())
}
