package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/sessionauth/internal/auth/http"
	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions/drivers/memory"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions/drivers/redis"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	startupTimeout = 30 * time.Second
)

// Application owns every long-lived dependency of the auth service.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	sessions sessions.Store
	metrics  *metrics.Metrics

	authService         *service.AuthService
	housekeepingService *service.HousekeepingService // nil unless the session store needs sweeping

	server *http.Server
	router *httpapi.Router

	shutdownOnce sync.Once
	shutdownErr  error
}

// New connects to the stores and builds the HTTP server. Nothing listens
// until Run is called.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if cfg.SecretFromFallback {
		app.logger.Warn("JWT_SECRET_KEY is not set, signing tokens with SECRET_KEY")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initSessions(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.closeStores()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("server failed", "error", err)
			return errors.Join(fmt.Errorf("server failed: %w", err), app.Shutdown())
		}
		return app.Shutdown()
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains the HTTP server and closes both stores. Only the first
// call does any work; later calls return its result.
func (app *Application) Shutdown() error {
	app.shutdownOnce.Do(func() {
		app.shutdownErr = app.shutdown()
	})
	return app.shutdownErr
}

func (app *Application) shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) closeStores() error {
	var errs []error
	if app.sessions != nil {
		if err := app.sessions.Close(); err != nil {
			app.logger.Error("error closing session store", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the user directory and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.UserStore {
	case UserStorePostgres:
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL, postgres.Options{})
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.UserStore)
	return nil
}

// initSessions connects the shared session store.
func (app *Application) initSessions(ctx context.Context) error {
	switch app.cfg.SessionStore {
	case SessionStoreMemory:
		mem := memory.New(nil)
		app.sessions = mem
		app.housekeepingService = service.NewHousekeepingService(mem, app.logger, app.cfg.HousekeepingInterval)
		app.logger.Warn("using in-memory session store, sessions are not shared between instances")
		return nil
	default:
		rs, err := redis.New(slogx.WithContext(ctx, app.logger), redis.Config{
			URL:       app.cfg.RedisURL,
			DB:        app.cfg.RedisSessionDB,
			KeyPrefix: app.cfg.RedisKeyPrefix,
			Timeout:   app.cfg.RedisTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to connect session store: %w", err)
		}
		app.sessions = rs
		return nil
	}
}

func (app *Application) initServices() error {
	pepper, err := cryptox.LoadOrGeneratePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	codec, err := jwtx.NewCodec(jwtx.CodecOptions{
		Secret: []byte(app.cfg.SecretKey),
		Issuer: app.cfg.Issuer,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}

	app.authService, err = service.NewAuthService(service.Config{
		AccessTTL:           app.cfg.AccessTTL(),
		RefreshTTL:          app.cfg.RefreshTTL(),
		SessionTTL:          app.cfg.SessionTTL(),
		MinPasswordLength:   app.cfg.MinPasswordLength,
		RotateRefreshTokens: app.cfg.RotateRefresh,
	}, service.Deps{
		Users:    app.db,
		Sessions: app.sessions,
		Codec:    codec,
		Hasher:   cryptox.NewArgon2Hasher(pepper),
		Metrics:  app.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}

	if app.cfg.SessionTTL() > app.cfg.AccessTTL() {
		app.logger.Warn("SESSION_TTL exceeds the access token lifetime and is capped",
			"session_ttl", app.cfg.SessionTTL(), "access_ttl", app.cfg.AccessTTL())
	}
	return nil
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.authService, BuildVersion, app.logger)
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
