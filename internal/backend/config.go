package backend

import (
	"fmt"

	"monev/internal/config"
	"monev/internal/services"
	gsheet "monev/internal/sheets/google"
)

const defaultCacheSize = 4

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DatabaseDriver)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DatabaseDriver)
	}

	return Config{
		Type:            backendType,
		DSN:             appConfig.DSN(),
		MaxOpenConns:    appConfig.DBMaxOpenConns,
		MaxIdleConns:    appConfig.DBMaxIdleConns,
		ConnMaxLifetime: appConfig.DBConnMaxLifetime,

		Retry: services.RetryPolicy{
			Attempts: appConfig.StoreRetryAttempts,
			Base:     appConfig.StoreRetryBase,
			Max:      appConfig.StoreRetryMax,
		},

		CacheTTL:  appConfig.CacheTTL,
		CacheSize: defaultCacheSize,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Sheets: gsheet.Config{
			SpreadsheetID:      appConfig.GoogleSpreadsheetID,
			ServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
			ServiceAccountFile: appConfig.GoogleServiceAccountFile,
			OAuthClientFile:    appConfig.GoogleOAuthClientFile,
			OAuthTokenFile:     appConfig.GoogleOAuthTokenFile,
		},
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.DSN == "" {
		return fmt.Errorf("a DSN is required for the %s backend", c.Type)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP is enabled")
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, PostgresBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
