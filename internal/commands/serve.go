package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orgadmin/internal/auth"
	"orgadmin/internal/cache"
	"orgadmin/internal/database"
	"orgadmin/internal/handlers"
	"orgadmin/internal/logger"
	"orgadmin/internal/middleware"
	"orgadmin/internal/routes"
	"orgadmin/internal/store"
	"orgadmin/internal/store/memory"
	"orgadmin/internal/store/sqlstore"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/afero"
)

type ServeCmd struct {
	Listen string `help:"HTTP server listen address" default:":8080" env:"ORGADMIN_LISTEN"`

	DB          DatabaseFlags `embed:"" prefix:"db-"`
	AutoMigrate bool          `help:"run database migrations on startup" default:"false" env:"ORGADMIN_AUTO_MIGRATE"`
	StoreType   string        `help:"store type (sql or memory)" default:"sql" enum:"sql,memory" env:"ORGADMIN_STORE_TYPE"`

	RedisAddr     string `help:"redis address; empty keeps tokens and caches in process memory" default:"" env:"ORGADMIN_REDIS_ADDR"`
	RedisPassword string `help:"redis password" default:"" env:"ORGADMIN_REDIS_PASSWORD"`
	RedisDB       int    `help:"redis database number" default:"0" env:"ORGADMIN_REDIS_DB"`

	JWTPrivateKey string        `help:"path to the PEM encoded RSA key signing access tokens; generated when empty" default:"" env:"ORGADMIN_JWT_PRIVATE_KEY"`
	SecureCookie  bool          `help:"mark the refresh token cookie Secure" default:"false" env:"ORGADMIN_SECURE_COOKIE"`
	CORSOrigins   []string      `help:"allowed CORS origins" default:"http://localhost:3000" env:"ORGADMIN_CORS_ORIGINS"`
	StructureTTL  time.Duration `help:"how long structure responses are cached" default:"5m" env:"ORGADMIN_STRUCTURE_TTL"`
}

func (c *ServeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	var (
		stores *store.Stores
		exec   database.Executor
		err    error
	)
	switch c.StoreType {
	case "memory":
		stores = memory.New()
		exec = database.NewDisabledExecutor()
		log.Info().Msg("Using in-memory stores")
	default:
		exec, err = c.DB.openTolerant(ctx, log)
		if err != nil {
			return err
		}
		defer exec.Close()

		if c.AutoMigrate {
			if err := database.RunMigrations(ctx, exec); err != nil {
				log.Error().Err(err).Msg("Database migrations failed")
			} else {
				log.Info().Msg("Database migrations completed")
			}
		}
		stores = sqlstore.New(exec)
		log.Info().Str("mode", c.DB.Mode).Msg("Using SQL stores")
	}

	var kv cache.Cache
	if c.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", c.RedisAddr).Msg("Redis is not reachable yet")
		}
		kv = cache.NewRedis(rdb)
	} else {
		log.Warn().Msg("No redis address configured, tokens are kept in process memory")
		kv = cache.NewMemory()
	}

	key, err := auth.LoadPrivateKey(afero.NewOsFs(), c.JWTPrivateKey)
	if err != nil {
		return err
	}
	if c.JWTPrivateKey == "" {
		log.Warn().Msg("No JWT private key configured, tokens will not survive a restart")
	}
	tokens := auth.NewTokenService(key, kv)

	authz, err := auth.NewAuthorizer()
	if err != nil {
		return err
	}

	h := handlers.New(handlers.Config{
		Stores:       stores,
		Executor:     exec,
		Cache:        kv,
		Tokens:       tokens,
		StructureTTL: c.StructureTTL,
		SecureCookie: c.SecureCookie,
	})
	router := routes.SetupRoutes(routes.Deps{Handler: h, Tokens: tokens, APIKeys: stores.APIKeys, Authz: authz})

	handler := logger.Requests(log)(middleware.CORS(c.CORSOrigins)(middleware.Compress(router)))
	server := configureHTTPServer(c.Listen, handler)

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", c.Listen).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return fmt.Errorf("listen error: %w", err)
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}
