package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/fleetdesk/fleetdesk-backend/api/routes"
	"github.com/fleetdesk/fleetdesk-backend/internal/documents"
	"github.com/fleetdesk/fleetdesk-backend/internal/inventory"
	"github.com/fleetdesk/fleetdesk-backend/internal/sales"
	"github.com/fleetdesk/fleetdesk-backend/internal/tradeins"
	"github.com/fleetdesk/fleetdesk-backend/internal/transfer"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/metrics"
	"github.com/fleetdesk/fleetdesk-backend/pkg/migrate"
	"github.com/fleetdesk/fleetdesk-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	core := metrics.NewCoreMetrics(promRegistry)

	vehicleRepo := inventory.NewRepository(dbClient.DB())
	soldRepo := sales.NewRepository(dbClient.DB())
	tradeInRepo := tradeins.NewRepository(dbClient.DB())
	documentRepo := documents.NewRepository(dbClient.DB())

	inventoryService, err := inventory.NewService(vehicleRepo, logg, core)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}
	salesService, err := sales.NewService(soldRepo, vehicleRepo, tradeInRepo, dbClient, logg, core)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}
	tradeInService, err := tradeins.NewService(tradeInRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create trade-in service", err)
		os.Exit(1)
	}
	documentService, err := documents.NewService(documentRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create document service", err)
		os.Exit(1)
	}
	transferService, err := transfer.NewService(vehicleRepo, soldRepo, tradeInRepo, documentRepo, dbClient, logg, core, cfg.Transfer)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promRegistry,
			inventoryService,
			salesService,
			tradeInService,
			documentService,
			transferService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
