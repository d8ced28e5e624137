// Package server assembles and runs the auth server: database connection
// with startup retry, schema migrations, the token sweep scheduler, the HTTP
// endpoint, and graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-retry"

	"github.com/cheridanh/infradev/internal/logging"
	"github.com/cheridanh/infradev/internal/server/auth"
	"github.com/cheridanh/infradev/internal/server/config"
	"github.com/cheridanh/infradev/internal/server/httpapi"
	"github.com/cheridanh/infradev/internal/server/repositories/repomanager"
	"github.com/cheridanh/infradev/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	authService    *services.AuthService
	refreshService *services.RefreshTokenService
	handler        *httpapi.Handler
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := openDB(ctx, cfg.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	key, err := auth.NewSigningKey(cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	codec := auth.NewCodec(key, cfg.AccessTokenValidityDuration)

	refreshService := services.NewRefreshTokenService(db, m, cfg, logger)
	authService := services.NewAuthService(db, m, codec, refreshService, logger)

	if err := httpapi.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("validator init error: %w", err)
	}
	handler := httpapi.NewHandler(authService, db, m, codec, logger)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		authService:    authService,
		refreshService: refreshService,
		handler:        handler,
	}, nil
}

// openDB opens the pool and pings it with fibonacci backoff, so the server
// survives the database coming up a few seconds later (compose startup
// ordering).
func openDB(ctx context.Context, dsn string, logger logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(time.Second))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn(ctx, "database not reachable yet, retrying", "error", err.Error())
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// startSweepScheduler runs the refresh token sweep on the configured cron
// schedule until ctx is cancelled.
func (app *App) startSweepScheduler(ctx context.Context) *cron.Cron {
	c := cron.New()

	// Schedule already validated by config.Validate.
	_, err := c.AddFunc(app.config.TokenCleanupSchedule, func() {
		if _, err := app.refreshService.Sweep(ctx); err != nil {
			app.logger.Error(ctx, "scheduled sweep failed", "error", err.Error())
		}
	})
	if err != nil {
		app.logger.Error(ctx, "sweep scheduler init failed", "error", err.Error())
		return c
	}

	c.Start()
	app.logger.Info(ctx, "sweep scheduler started", "schedule", app.config.TokenCleanupSchedule)
	return c
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	sweeper := app.startSweepScheduler(ctx)

	srv := httpapi.NewServer(app.config.EndpointAddr, app.handler.Routes(), app.logger)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err.Error())
	}

	<-sweeper.Stop().Done()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err.Error())
	}

	app.logger.Info(shutdownCtx, "app stopped")
}
