package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/food-storefront/internal/catalog"
	journalsqlite "github.com/jcmexdev/food-storefront/internal/coordinator/placementlog/sqlite"
	"github.com/jcmexdev/food-storefront/internal/kitchen"
	ordersqlite "github.com/jcmexdev/food-storefront/internal/ordering/sqlite"
	"github.com/jcmexdev/food-storefront/internal/pkg/broker"
	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/pkg/config"
	"github.com/jcmexdev/food-storefront/internal/pkg/sqlitedb"
	"github.com/jcmexdev/food-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/food-storefront/internal/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/app"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/httpx"
)

func main() {
	if err := run(); err != nil {
		slog.Error("storefront exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Environment: cfg.Environment,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Error("tracer shutdown failed", "error", err)
		}
	}()

	db, err := sqlitedb.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	orders, err := ordersqlite.New(db)
	if err != nil {
		return err
	}
	journal, err := journalsqlite.New(db)
	if err != nil {
		return err
	}

	var store cache.Cache
	if cfg.RedisAddr != "" {
		store = cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
		if err := cache.Ping(ctx, store); err != nil {
			return err
		}
		slog.Info("using redis cache", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemoryCache(cfg.ServiceName)
	}

	var source catalog.Source = catalog.EmbeddedSource{}
	if cfg.CatalogPath != "" {
		source = catalog.FileSource{Path: cfg.CatalogPath}
	}
	menu, err := catalog.Load(ctx, catalog.NewCachedSource(source, store, "menu", cfg.CatalogCacheTTL))
	if err != nil {
		return err
	}
	slog.Info("catalog loaded", "items", menu.Len(), "categories", len(menu.Categories()))

	var pub kitchen.Publisher = broker.LogPublisher{}
	if cfg.RabbitMQURL != "" {
		client, err := broker.Dial(cfg.RabbitMQURL)
		if err != nil {
			return err
		}
		defer client.Close()
		if err := client.DeclareTopology(); err != nil {
			return err
		}
		pub = client
		slog.Info("publishing kitchen events to rabbitmq", "exchange", broker.OrdersExchange)
	}

	sessions := session.NewRegistry(cfg.SessionIdleTimeout)
	go sessions.RunSweeper(ctx, cfg.SessionSweepInterval)

	svc := app.NewService(app.Options{
		Catalog:        menu,
		Sessions:       sessions,
		Orders:         orders,
		Journal:        journal,
		Kitchen:        kitchen.NewNotifier(pub),
		Cache:          store,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(httpx.NewHandler(svc), svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("storefront listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
