package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ticketehq/inventory-sync/internal/cron"
	"github.com/ticketehq/inventory-sync/internal/inventory"
	"github.com/ticketehq/inventory-sync/internal/provider"
	syncpkg "github.com/ticketehq/inventory-sync/internal/sync"
	"github.com/ticketehq/inventory-sync/pkg/config"
	"github.com/ticketehq/inventory-sync/pkg/db"
	"github.com/ticketehq/inventory-sync/pkg/logger"
	"github.com/ticketehq/inventory-sync/pkg/metrics"
	"github.com/ticketehq/inventory-sync/pkg/migrate"
	"github.com/ticketehq/inventory-sync/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
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

	repo := inventory.NewRepository(dbClient.DB())
	if err := repo.EnsureProducts(context.Background(), cfg.Provider.ProductIDs()); err != nil {
		logg.Error(context.Background(), "failed to seed products", err)
		os.Exit(1)
	}

	providerClient, err := provider.NewClient(cfg.Provider, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create provider client", err)
		os.Exit(1)
	}

	reconciler, err := inventory.NewReconciler(inventory.ReconcilerParams{
		Store:  repo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciler", err)
		os.Exit(1)
	}

	syncMetrics := metrics.NewSyncJobMetrics(prometheus.DefaultRegisterer)

	planner, err := syncpkg.NewPlanner(syncpkg.PlannerParams{
		Fetcher:    providerClient,
		Reconciler: reconciler,
		Rules:      cfg.Provider.Rules(),
		Logger:     logg,
		Metrics:    syncMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create planner", err)
		os.Exit(1)
	}

	locks, err := cron.NewRedisLockFactory(redisClient, cfg.Sync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create lock factory", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	jobs := []cron.AvailabilityJobParams{
		{Name: "sync-today", Days: syncpkg.HorizonToday, Interval: cfg.Sync.TodayInterval, Planner: planner},
		{Name: "sync-week", Days: syncpkg.HorizonWeek, Interval: cfg.Sync.WeekInterval, Planner: planner},
		{Name: "sync-month", Days: syncpkg.HorizonMonth, Interval: cfg.Sync.MonthInterval, Planner: planner},
	}
	for _, params := range jobs {
		job, err := cron.NewAvailabilityJob(params)
		if err != nil {
			logg.Error(context.Background(), "failed to create sync job", err)
			os.Exit(1)
		}
		registry.Register(job)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Locks:    locks,
		Metrics:  syncMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting sync worker")

	if cfg.Sync.InitialSync {
		if err := planner.SyncHorizon(ctx, "sync-initial", syncpkg.HorizonMonth); err != nil {
			// Partial failures are already logged per pair; the worker
			// still starts and the cadences will retry.
			logg.Error(ctx, "initial month sync finished with failures", err)
		}
	}

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sync worker shutting down gracefully")
}
