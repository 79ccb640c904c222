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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/simpos-backend/api/controllers"
	"github.com/angelmondragon/simpos-backend/api/routes"
	"github.com/angelmondragon/simpos-backend/internal/audit"
	"github.com/angelmondragon/simpos-backend/internal/discounts"
	"github.com/angelmondragon/simpos-backend/internal/inventory"
	"github.com/angelmondragon/simpos-backend/internal/sales"
	"github.com/angelmondragon/simpos-backend/pkg/config"
	"github.com/angelmondragon/simpos-backend/pkg/db"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
	"github.com/angelmondragon/simpos-backend/pkg/metrics"
	"github.com/angelmondragon/simpos-backend/pkg/migrate"
	"github.com/angelmondragon/simpos-backend/pkg/redis"
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
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	closers := []func() error{dbClient.Close}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	deps := routes.Dependencies{DB: dbClient}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		deps.Redis = controllers.Pinger(redisClient)
		deps.Idempotency = redisClient
		deps.RateLimiter = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; idempotency replay and rate limiting disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Gatherer = registry

	conn := dbClient.DB()
	auditService, err := audit.NewService(audit.NewRepository(conn))
	if err != nil {
		logg.Error(ctx, "failed to create audit service", err)
		os.Exit(1)
	}
	stock := inventory.NewStore(conn)

	salesService, err := sales.NewService(sales.ServiceParams{
		Repo:              sales.NewRepository(conn),
		TransactionRunner: dbClient,
		Stock:             stock,
		Audit:             auditService,
		Discounts:         discounts.NewResolver(conn),
		Metrics:           metrics.NewSalesMetrics(registry),
		Logger:            logg,
		VATRate:           cfg.Sales.VATRate,
		CreditRestocks:    cfg.Sales.CreditRestocks,
	})
	if err != nil {
		logg.Error(ctx, "failed to create sales service", err)
		os.Exit(1)
	}

	deps.Sales = salesService
	deps.Stock = stock
	deps.Audit = auditService

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
			exitCode = 1
		}
		cancel()
	}

	var closeErr error
	for i := len(closers) - 1; i >= 0; i-- {
		closeErr = multierr.Append(closeErr, closers[i]())
	}
	if closeErr != nil {
		logg.Error(logCtx, "error releasing resources", closeErr)
		exitCode = 1
	}
	os.Exit(exitCode)
}
