package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/Houeta/scrum-agent/internal/config"
	"github.com/Houeta/scrum-agent/internal/lib/logger/sl"
	"github.com/Houeta/scrum-agent/internal/lib/telemetry"
	"github.com/Houeta/scrum-agent/internal/metrics"
	"github.com/Houeta/scrum-agent/internal/repository"
	"github.com/Houeta/scrum-agent/internal/server"
	"github.com/Houeta/scrum-agent/internal/services/employees"
)

// main is the entry point of the employee API.
func main() {
	cfg := config.MustLoad()

	logger := sl.Setup(cfg.Env, os.Stdout)

	if err := run(logger, cfg); err != nil {
		logger.Error("Application stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("Application stopped gracefully...")
}

func run(logger *slog.Logger, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if shutdownErr := shutdownTracing(shutdownCtx); shutdownErr != nil {
			logger.Warn("Failed to flush traces", sl.Err(shutdownErr))
		}
	}()

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	employeeRepo, pinger, closeStorage, err := openStorage(ctx, cfg, appMetrics)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer closeStorage()

	directory := employees.NewDirectory(logger, employeeRepo, appMetrics, cfg.Employees.DummyDepartment)

	apiServer := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           server.NewAPI(logger, directory, appMetrics),
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	trackerHost := cfg.Jira.URL
	if cfg.Jira.Mock {
		trackerHost = ""
	}
	monitoringServer := &http.Server{
		Addr:              cfg.HTTP.MetricsAddress,
		Handler:           server.NewMonitoringHandler(reg, server.NewHealthChecker(pinger, trackerHost, logger)),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Run(groupCtx, logger.With(slog.String("server", "api")), apiServer, cfg.HTTP.ShutdownTimeout)
	})
	group.Go(func() error {
		return server.Run(groupCtx, logger.With(slog.String("server", "monitoring")), monitoringServer,
			cfg.HTTP.ShutdownTimeout)
	})

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.",
		"storage", cfg.Storage.Driver, "dummy_department", directory.DummyDepartment(),
		"tracing", cfg.Tracing.Endpoint != "")

	return group.Wait()
}

// openStorage returns the employee repository selected by storage.driver and a function releasing it.
func openStorage(
	ctx context.Context,
	cfg *config.Config,
	appMetrics *metrics.Metrics,
) (repository.EmployeeRepoIface, server.DBPinger, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := repository.NewDatabase(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
		}
		return repository.NewEmployeeRepository(pool, appMetrics), pool, pool.Close, nil
	default:
		store := repository.NewMemoryEmployeeStore(repository.SeedEmployees())
		return store, store, func() {}, nil
	}
}
