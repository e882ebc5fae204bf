package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Houeta/scrum-agent/internal/codegen"
	"github.com/Houeta/scrum-agent/internal/config"
	"github.com/Houeta/scrum-agent/internal/lib/logger/sl"
	"github.com/Houeta/scrum-agent/internal/metrics"
	"github.com/Houeta/scrum-agent/internal/repository"
	"github.com/Houeta/scrum-agent/internal/services/pipeline"
	"github.com/Houeta/scrum-agent/internal/tracker"
	"github.com/Houeta/scrum-agent/internal/vcs"
	"github.com/Houeta/scrum-agent/internal/workspace"
)

var errNoConfig = errors.New("config path is empty, set --config or CONFIG_PATH")

type deps struct {
	runner     *pipeline.Runner
	log        *slog.Logger
	registry   *prometheus.Registry
	metricsCfg config.MetricsConfig
	close      func()
}

// buildDeps wires the pipeline from the config file. The code generator is only
// created when withGenerator is set so prompt and status work without an API key.
func buildDeps(ctx context.Context, configPath string, logOut io.Writer, withGenerator bool) (*deps, error) {
	if configPath == "" {
		return nil, errNoConfig
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := sl.Setup(cfg.Env, logOut)
	registry := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(registry)

	storyTracker, err := newTracker(logger, cfg.Jira)
	if err != nil {
		return nil, err
	}

	var generator pipeline.CodeGenerator
	if withGenerator {
		if generator, err = codegen.NewGemini(ctx, logger, cfg.Gemini); err != nil {
			return nil, err
		}
	}

	runs, closeRuns, err := newRunRepository(ctx, cfg, appMetrics)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(
		logger,
		appMetrics,
		storyTracker,
		generator,
		workspace.NewLinter(logger, cfg.Pipeline.LintCommands),
		vcs.NewGit(logger, cfg.Git),
		runs,
		cfg.Pipeline,
		cfg.Git.RepoPath,
	)

	return &deps{
		runner:     runner,
		log:        logger,
		registry:   registry,
		metricsCfg: cfg.Metrics,
		close:      closeRuns,
	}, nil
}

// exportMetrics hands the run metrics to the configured targets. A failed export only warns.
func (d *deps) exportMetrics(ctx context.Context) {
	if err := metrics.Export(ctx, d.registry, d.metricsCfg); err != nil {
		d.log.WarnContext(ctx, "Failed to export run metrics", sl.Err(err))
	}
}

func newTracker(logger *slog.Logger, cfg config.JiraConfig) (tracker.Tracker, error) {
	if cfg.Mock {
		return tracker.NewMock(logger, cfg.MockStoriesPath)
	}

	return tracker.NewJira(logger, cfg)
}

func newRunRepository(
	ctx context.Context,
	cfg *config.Config,
	appMetrics *metrics.Metrics,
) (repository.RunRepoIface, func(), error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		return repository.NewFileRunStore(cfg.Storage.RunsFile), func() {}, nil
	}

	pool, err := repository.NewDatabase(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	return repository.NewRunRepository(pool, appMetrics), pool.Close, nil
}
