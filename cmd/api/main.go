package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brightmill/storefront-insights/api/controllers"
	"github.com/brightmill/storefront-insights/api/routes"
	"github.com/brightmill/storefront-insights/internal/catalog"
	"github.com/brightmill/storefront-insights/internal/dashboard"
	"github.com/brightmill/storefront-insights/internal/eventstore"
	"github.com/brightmill/storefront-insights/pkg/bigquery"
	"github.com/brightmill/storefront-insights/pkg/config"
	"github.com/brightmill/storefront-insights/pkg/db"
	"github.com/brightmill/storefront-insights/pkg/logger"
	"github.com/brightmill/storefront-insights/pkg/metrics"
	"github.com/brightmill/storefront-insights/pkg/migrate"
	"github.com/brightmill/storefront-insights/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	bqClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap bigquery", err)
		os.Exit(1)
	}
	defer func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing bigquery", err)
		}
	}()

	registry := prometheus.NewRegistry()
	queryMetrics := metrics.NewQueryMetrics(registry)

	store, err := eventstore.NewBigQuery(bqClient, cfg.BigQuery.Dataset, cfg.BigQuery.EventsTable, cfg.Query.RowCeiling)
	if err != nil {
		logg.Error(context.Background(), "failed to wire event store", err)
		os.Exit(1)
	}

	products, err := catalog.NewRepo(dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire catalog", err)
		os.Exit(1)
	}

	service, err := dashboard.NewService(store, products, cfg.Query, cfg.Alerts, logg, queryMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire dashboard service", err)
		os.Exit(1)
	}

	var runner dashboard.Runner = service
	if cfg.Cache.Enabled {
		cached, err := dashboard.NewCachedRunner(service, redisClient, cfg.Cache.TTL, logg, queryMetrics)
		if err != nil {
			logg.Error(context.Background(), "failed to wire result cache", err)
			os.Exit(1)
		}
		runner = cached
	}

	handler := routes.NewRouter(cfg, logg, routes.Deps{
		Runner:      runner,
		RateLimiter: redisClient,
		HealthChecks: map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
			"bigquery": bqClient,
		},
		Registry: registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":           cfg.App.Env,
		"addr":          addr,
		"cache_enabled": cfg.Cache.Enabled,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
