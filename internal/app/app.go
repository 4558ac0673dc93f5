// Package app wires the campus-eats components into a runnable web shell.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/campus-eats/appkit/internal/api"
	"github.com/campus-eats/appkit/internal/cart"
	"github.com/campus-eats/appkit/internal/config"
	"github.com/campus-eats/appkit/internal/guard"
	"github.com/campus-eats/appkit/internal/identity"
	"github.com/campus-eats/appkit/internal/identity/local"
	"github.com/campus-eats/appkit/internal/identity/remote"
	"github.com/campus-eats/appkit/internal/kvstore"
	"github.com/campus-eats/appkit/internal/likes"
	"github.com/campus-eats/appkit/internal/notification"
	"github.com/campus-eats/appkit/internal/order"
	"github.com/campus-eats/appkit/internal/token"
	"github.com/campus-eats/appkit/pkg/health"
	"github.com/campus-eats/appkit/pkg/httpclient"
)

// App holds the wired dependency graph and the HTTP server.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	rdb    *redis.Client
	pgpool *pgxpool.Pool

	tokens        *token.Store
	provider      identity.Provider
	localProvider *local.Provider

	notifications *notification.Store
	orders        *order.Store
	cart          *cart.Store
	likes         *likes.Store

	health *health.Handler

	httpServer *http.Server
}

// NewApp creates an application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger, health: health.NewHandler()}

	kv, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	tokens := token.NewStore(kv)
	a.tokens = tokens

	// Identity: a configured backend means the remote provider over the
	// request pipeline; otherwise the in-process dev provider, which also
	// backs the refresh endpoint.
	if cfg.APIBaseURL != "" {
		base := httpclient.New(httpclient.Config{Timeout: cfg.APITimeout()})
		var doer httpclient.Doer = base
		if cfg.CircuitBreakerEnabled {
			doer = httpclient.NewCircuitBreakerClient(base,
				httpclient.DefaultCircuitBreakerConfig("backend-api"), logger)
		}
		client := api.NewClient(cfg.APIBaseURL, doer, tokens, logger)
		a.provider = remote.NewProvider(client, tokens, logger)
		logger.Info("using remote identity provider", slog.String("api_base", cfg.APIBaseURL))
	} else {
		jwtMgr := local.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
		a.localProvider = local.NewProvider(tokens, jwtMgr, logger)
		a.provider = a.localProvider
		logger.Info("using local identity provider")
	}

	keyFunc := identity.KeyFunc(a.provider)

	a.notifications = notification.NewStore(kv, keyFunc, logger)
	a.orders = order.NewStore(kv, keyFunc, logger,
		order.WithNotifier(func(ctx context.Context, title, message string) {
			a.notifications.Add(ctx, title, message)
		}),
	)
	a.cart = cart.NewStore(keyFunc)
	a.likes = likes.NewStore()

	g := guard.New(guard.DefaultRoutes(), func() bool {
		return a.provider.CurrentUser() != nil
	})

	router := a.newRouter(g)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return a, nil
}

// openStorage connects the configured key-value backend.
func (a *App) openStorage(ctx context.Context) (kvstore.Store, error) {
	switch a.cfg.StorageBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPass,
			DB:       a.cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		a.health.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		a.logger.Info("connected to Redis", slog.String("addr", a.cfg.RedisAddr))
		return kvstore.NewRedis(rdb), nil

	case "postgres":
		pool, err := pgxpool.New(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pgpool = pool
		a.health.Register("postgres", pool.Ping)
		a.logger.Info("connected to PostgreSQL")
		return kvstore.NewPostgres(pool), nil

	default:
		return kvstore.NewMemory(), nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the server and closes storage connections.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.pgpool != nil {
		a.pgpool.Close()
	}

	a.logger.Info("application stopped")
	return nil
}
