package backend

import (
	"context"
	"fmt"
	"log/slog"

	"monev/internal/amqp"
	"monev/internal/cache"
	"monev/internal/core"
	"monev/internal/services"
	"monev/internal/sheets"
	gsheet "monev/internal/sheets/google"
	"monev/internal/sheets/memory"
	"monev/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the store and assembles the MonitoringService around it.
// An unreachable broker is logged and the service runs without change events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, storage.Config{
		Driver:          config.Type.String(),
		DSN:             config.DSN,
		MaxOpenConns:    config.MaxOpenConns,
		MaxIdleConns:    config.MaxIdleConns,
		ConnMaxLifetime: config.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", config.Type, err)
	}

	opts := []services.Option{services.WithRetryPolicy(config.Retry)}
	result := &BackendResult{Store: store}

	if config.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			opts = append(opts, services.WithPublisher(amqpClient))
			result.Publishing = true
		}
	}

	if config.CacheTTL > 0 {
		size := config.CacheSize
		if size < 1 {
			size = defaultCacheSize
		}
		result.Snapshots = cache.NewLRUCache[core.Snapshot](size, config.CacheTTL)
		opts = append(opts, services.WithSnapshotCache(result.Snapshots))
	}

	result.Service = services.NewMonitoringService(store, opts...)
	result.Cleanup = result.Service.Close

	f.logger.Info("Initialized backend",
		"driver", config.Type,
		"amqp_enabled", result.Publishing,
		"cache_ttl", config.CacheTTL)

	return result, nil
}

// CreateExporter returns the Google Sheets exporter when a spreadsheet is
// configured, and an in-memory exporter otherwise.
func (f *DefaultFactory) CreateExporter(ctx context.Context, config Config) (sheets.SnapshotExporter, error) {
	if config.Sheets.SpreadsheetID == "" {
		f.logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting in memory")
		return memory.New(), nil
	}

	exporter, err := gsheet.NewExporter(ctx, config.Sheets)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets exporter: %w", err)
	}
	f.logger.Info("Google Sheets exporter initialized", "spreadsheet_id", config.Sheets.SpreadsheetID)
	return exporter, nil
}
