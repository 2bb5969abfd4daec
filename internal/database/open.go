package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
)

// ModeDisabled skips all database work.
const ModeDisabled = "disabled"

// Config selects and tunes the backend. It is resolved once at startup.
type Config struct {
	// Mode is one of sqlserver, sqlite, postgres or disabled.
	Mode string

	// DSN is the driver connection string. For sqlite this is the file path
	// (or ":memory:").
	DSN string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 20 (sqlite is always 1)
	MaxOpenConns int

	// MaxIdleConns is the number of idle connections kept.
	// Default: 5
	MaxIdleConns int

	// ConnMaxLifetime is the maximum time a connection can be reused.
	// Default: 1 hour
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime is the maximum time a connection can be idle.
	// Default: 30 minutes
	ConnMaxIdleTime time.Duration

	// ConnectTimeout bounds the startup ping.
	// Default: 10 seconds
	ConnectTimeout time.Duration
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *Config) ApplyDefaults() {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 20
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = time.Hour
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 30 * time.Minute
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Mode == ModeDisabled {
		return nil
	}
	if _, err := ParseDialect(c.Mode); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("connection string is required for %s", c.Mode)
	}
	return nil
}

// Open creates the executor for the configured backend and verifies
// connectivity.
func Open(ctx context.Context, cfg Config) (Executor, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	if cfg.Mode == ModeDisabled {
		return NewDisabledExecutor(), nil
	}

	dialect, _ := ParseDialect(cfg.Mode)
	db, err := sql.Open(dialect.DriverName(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == SQLite {
		// One connection keeps ":memory:" databases alive and serialises
		// writers on the single database file.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if dialect == SQLite {
		if _, err := db.ExecContext(pingCtx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return NewSQLExecutor(db, dialect), nil
}
