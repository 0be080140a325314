package cli

import (
	"testing"
	"time"

	"monev/internal/config"
)

func TestStoreConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantDSN string
	}{
		{
			name:    "sqlite uses the database path",
			cfg:     config.Config{DatabaseDriver: "sqlite", SQLiteDBPath: "./data/monev.db", DatabaseURL: "ignored"},
			wantDSN: "./data/monev.db",
		},
		{
			name:    "postgres uses the database url",
			cfg:     config.Config{DatabaseDriver: "postgres", SQLiteDBPath: "ignored", DatabaseURL: "postgres://localhost/monev"},
			wantDSN: "postgres://localhost/monev",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.DBMaxOpenConns = 7
			tt.cfg.DBMaxIdleConns = 3
			tt.cfg.DBConnMaxLifetime = time.Minute

			got := StoreConfig(&tt.cfg)
			if got.Driver != tt.cfg.DatabaseDriver {
				t.Errorf("Driver = %q, want %q", got.Driver, tt.cfg.DatabaseDriver)
			}
			if got.DSN != tt.wantDSN {
				t.Errorf("DSN = %q, want %q", got.DSN, tt.wantDSN)
			}
			if got.MaxOpenConns != 7 || got.MaxIdleConns != 3 || got.ConnMaxLifetime != time.Minute {
				t.Errorf("pool settings not carried over: %+v", got)
			}
		})
	}
}
