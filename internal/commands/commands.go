package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"orgadmin/internal/database"

	"github.com/rs/zerolog"
)

type Globals struct {
	Debug   bool
	Version string
}

// DatabaseFlags selects the backend. Shared by every command that touches
// the database.
type DatabaseFlags struct {
	Mode            string        `help:"database backend" default:"sqlite" enum:"sqlserver,sqlite,postgres,disabled" env:"ORGADMIN_DB_MODE"`
	DSN             string        `help:"database connection string (file path for sqlite)" default:"orgadmin.db" env:"ORGADMIN_DB_DSN"`
	MaxOpenConns    int           `help:"maximum number of open connections" default:"20" env:"ORGADMIN_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `help:"maximum number of idle connections" default:"5" env:"ORGADMIN_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `help:"maximum connection lifetime" default:"1h" env:"ORGADMIN_DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `help:"maximum connection idle time" default:"30m" env:"ORGADMIN_DB_CONN_MAX_IDLE_TIME"`
	ConnectTimeout  time.Duration `help:"startup connection timeout" default:"10s" env:"ORGADMIN_DB_CONNECT_TIMEOUT"`
}

func (f DatabaseFlags) Config() database.Config {
	return database.Config{
		Mode:            f.Mode,
		DSN:             f.DSN,
		MaxOpenConns:    f.MaxOpenConns,
		MaxIdleConns:    f.MaxIdleConns,
		ConnMaxLifetime: f.ConnMaxLifetime,
		ConnMaxIdleTime: f.ConnMaxIdleTime,
		ConnectTimeout:  f.ConnectTimeout,
	}
}

// open connects to the configured backend. Commands that cannot work without
// a database fail here.
func (f DatabaseFlags) open(ctx context.Context) (database.Executor, error) {
	exec, err := database.Open(ctx, f.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", f.Mode, err)
	}
	return exec, nil
}

// openTolerant keeps the process alive when the backend cannot be reached:
// the failure is logged and every later call returns database.ErrUnavailable.
func (f DatabaseFlags) openTolerant(ctx context.Context, log zerolog.Logger) (database.Executor, error) {
	cfg := f.Config()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	exec, err := database.Open(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Str("mode", f.Mode).Msg("Database connection failed, serving in degraded mode")
		dialect, _ := database.ParseDialect(f.Mode)
		return database.NewUnavailableExecutor(dialect, err), nil
	}
	return exec, nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
