package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"monev/internal/config"
	"monev/internal/core"
	"monev/internal/services"
	"monev/internal/sheets/memory"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Type:     SQLiteBackend,
		DSN:      filepath.Join(t.TempDir(), "monev.db"),
		Retry:    services.DefaultRetryPolicy,
		CacheTTL: time.Minute,
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	result, err := f.CreateBackend(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer result.Cleanup()

	if result.Publishing {
		t.Error("publishing should be off without an AMQP URL")
	}
	if result.Snapshots == nil {
		t.Fatal("snapshot cache should be enabled with a positive TTL")
	}

	created, err := result.Service.CreateBudget(ctx, core.Budget{
		Provinsi: "Jawa Barat", Kabupaten: "Bandung", OPD: "Bappeda", Anggaran: 1000, Realisasi: 500,
	})
	if err != nil {
		t.Fatalf("CreateBudget() error = %v", err)
	}
	if created.ID == 0 {
		t.Error("expected an assigned id")
	}

	snap, err := result.Service.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snap.Budgets) != 1 {
		t.Errorf("snapshot budgets = %d, want 1", len(snap.Budgets))
	}
	if _, err := result.Service.Snapshot(ctx); err != nil {
		t.Fatalf("second Snapshot() error = %v", err)
	}
	if hits := result.Snapshots.Stats().Hits; hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
}

func TestFactory_CreateBackend_CacheDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheTTL = 0

	result, err := NewFactory(nil).CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer result.Cleanup()

	if result.Snapshots != nil {
		t.Error("cache should be disabled with a zero TTL")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad type", func(c *Config) { c.Type = "mysql" }, true},
		{"missing dsn", func(c *Config) { c.DSN = "" }, true},
		{"zero attempts", func(c *Config) { c.Retry.Attempts = 0 }, true},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPExchange = "monev" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_CreateExporter_Memory(t *testing.T) {
	exporter, err := NewFactory(nil).CreateExporter(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("CreateExporter() error = %v", err)
	}
	if _, ok := exporter.(*memory.Exporter); !ok {
		t.Errorf("CreateExporter() = %T, want *memory.Exporter", exporter)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should fail")
	}

	app := &config.Config{
		DatabaseDriver:      "postgres",
		DatabaseURL:         "postgres://localhost/monev",
		StoreRetryAttempts:  4,
		StoreRetryBase:      10 * time.Millisecond,
		StoreRetryMax:       time.Second,
		CacheTTL:            30 * time.Second,
		GoogleSpreadsheetID: "sheet-1",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.DSN != app.DatabaseURL {
		t.Errorf("type/dsn = %s/%s", cfg.Type, cfg.DSN)
	}
	if cfg.Retry.Attempts != 4 || cfg.Retry.Base != 10*time.Millisecond {
		t.Errorf("retry = %+v", cfg.Retry)
	}
	if cfg.Sheets.SpreadsheetID != "sheet-1" {
		t.Errorf("spreadsheet id = %q", cfg.Sheets.SpreadsheetID)
	}

	app.DatabaseDriver = "mysql"
	if _, err := FromAppConfig(app); err == nil {
		t.Error("unsupported driver should fail")
	}
}
