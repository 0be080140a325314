package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers. The names double as database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Config describes how to reach the relational store.
type Config struct {
	Driver string
	// DSN is a file path for sqlite and a connection URL for postgres.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store is the sqlx-backed repository for all four monitoring resources.
type Store struct {
	db     *sqlx.DB
	driver string
}

// SQLiteDSN turns a database path into a modernc DSN with foreign keys enforced
// on every pooled connection.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open connects to the configured database, applies migrations and returns a ready Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	dsn := cfg.DSN
	switch cfg.Driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		dsn = SQLiteDSN(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres driver requires a connection URL")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sqlx.ConnectContext(ctx, cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxLifetime)
	}

	if err := RunMigrations(cfg.Driver, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.InfoContext(ctx, "Store opened", "driver", cfg.Driver, "max_open_conns", cfg.MaxOpenConns)

	return &Store{db: db, driver: cfg.Driver}, nil
}

// Driver returns the database driver name the store was opened with.
func (s *Store) Driver() string {
	return s.driver
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return classify("ping", s.db.PingContext(ctx))
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// deleteTx loads the row identified by id into dest, then deletes it, inside one transaction.
func (s *Store) deleteTx(ctx context.Context, op, selectQuery, deleteQuery string, id int64, dest any) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify("begin_transaction", err)
	}
	defer tx.Rollback()

	if err := tx.GetContext(ctx, dest, tx.Rebind(selectQuery), id); err != nil {
		return classify(op, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(deleteQuery), id); err != nil {
		return classify(op, err)
	}
	if err := tx.Commit(); err != nil {
		return classify("commit_transaction", err)
	}
	return nil
}

// insertNamed runs a named INSERT ... RETURNING id and yields the new id.
func (s *Store) insertNamed(ctx context.Context, op, query string, arg any) (int64, error) {
	stmt, err := s.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, classify(op, err)
	}
	defer stmt.Close()

	var id int64
	if err := stmt.GetContext(ctx, &id, arg); err != nil {
		return 0, classify(op, err)
	}
	return id, nil
}
