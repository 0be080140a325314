// Package backend wires the store, snapshot cache and change-event publisher
// into a MonitoringService, and picks the spreadsheet exporter.
package backend

import (
	"context"
	"time"

	"monev/internal/cache"
	"monev/internal/core"
	"monev/internal/services"
	"monev/internal/sheets"
	gsheet "monev/internal/sheets/google"
	"monev/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the assembled service and the pieces callers report on.
type BackendResult struct {
	Service *services.MonitoringService
	Store   *storage.Store
	// Snapshots is nil when caching is disabled.
	Snapshots *cache.LRUCache[core.Snapshot]
	// Publishing reports whether change events reach a broker.
	Publishing bool
	Cleanup    CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	CreateExporter(ctx context.Context, config Config) (sheets.SnapshotExporter, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType
	// DSN is a file path for sqlite and a connection URL for postgres.
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	Retry services.RetryPolicy

	// CacheTTL of zero disables the snapshot cache.
	CacheTTL  time.Duration
	CacheSize int

	// Empty AMQPURL disables change events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	Sheets gsheet.Config
}

// BackendType names the relational store driver.
type BackendType string

const (
	SQLiteBackend   BackendType = storage.DriverSQLite
	PostgresBackend BackendType = storage.DriverPostgres
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
