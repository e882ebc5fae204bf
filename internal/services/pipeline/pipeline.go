package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Houeta/scrum-agent/internal/codegen"
	"github.com/Houeta/scrum-agent/internal/config"
	"github.com/Houeta/scrum-agent/internal/lib/logger/sl"
	"github.com/Houeta/scrum-agent/internal/lib/retry"
	"github.com/Houeta/scrum-agent/internal/metrics"
	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/Houeta/scrum-agent/internal/parser"
	"github.com/Houeta/scrum-agent/internal/repository"
	"github.com/Houeta/scrum-agent/internal/tracker"
	"github.com/Houeta/scrum-agent/internal/workspace"
)

const (
	StageFetch    = "fetch"
	StagePrompt   = "prompt"
	StageGenerate = "generate"
	StageWrite    = "write"
	StageTests    = "tests"
	StageLint     = "lint"
	StageCommit   = "commit"
	StageUpdate   = "update"
)

var ErrInvalidCode = errors.New("generated code is not valid Go")

// StageError reports the stage a run failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type CodeGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Linter interface {
	Run(ctx context.Context, dir string) (string, error)
}

type Committer interface {
	CommitAndPush(ctx context.Context, message string) (string, error)
}

// Options alter a single run.
type Options struct {
	DryRun bool // DryRun stops after lint: nothing is committed and the ticket is untouched.
}

// Result describes a finished run.
type Result struct {
	RunID      string
	Story      models.Story
	Prompt     string
	CodePath   string
	TestPath   string
	LintReport string
	LintPassed bool
	CommitHash string
	DryRun     bool
}

type Runner struct {
	log       *slog.Logger
	metrics   *metrics.Metrics
	tracker   tracker.Tracker
	generator CodeGenerator
	linter    Linter
	committer Committer
	runs      repository.RunRepoIface
	cfg       config.PipelineConfig
	repoPath  string
	now       func() time.Time
}

func NewRunner(
	log *slog.Logger,
	metrics *metrics.Metrics,
	storyTracker tracker.Tracker,
	generator CodeGenerator,
	linter Linter,
	committer Committer,
	runs repository.RunRepoIface,
	cfg config.PipelineConfig,
	repoPath string,
) *Runner {
	return &Runner{
		log:       log.With(slog.String("division", "pipeline")),
		metrics:   metrics,
		tracker:   storyTracker,
		generator: generator,
		linter:    linter,
		committer: committer,
		runs:      runs,
		cfg:       cfg,
		repoPath:  repoPath,
		now:       time.Now,
	}
}

// Run turns the story behind issueKey into committed code and closes the ticket.
func (r *Runner) Run(ctx context.Context, issueKey string, opts Options) (Result, error) {
	const opn = "Runner.Run"
	log := r.log.With(slog.String("op", opn), slog.String("issue", issueKey))

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	run := models.PipelineRun{
		ID:        uuid.NewString(),
		IssueKey:  issueKey,
		Status:    models.RunRunning,
		StartedAt: r.now().UTC(),
	}
	if err := r.runs.SaveRun(ctx, run); err != nil {
		log.WarnContext(ctx, "Failed to record run start", sl.Err(err))
	}

	log.InfoContext(ctx, "Pipeline started", "run_id", run.ID, "dry_run", opts.DryRun)

	result := Result{RunID: run.ID, DryRun: opts.DryRun}
	stage, err := r.execute(ctx, issueKey, opts, &result)

	run.Stage = stage
	run.CommitHash = result.CommitHash
	run.FinishedAt = r.now().UTC()
	if err != nil {
		run.Status = models.RunFailed
		run.Error = err.Error()
		r.metrics.PipelineRuns.WithLabelValues("failure").Inc()
		log.ErrorContext(ctx, "Pipeline failed", "stage", stage, sl.Err(err))
	} else {
		run.Status = models.RunSucceeded
		r.metrics.PipelineRuns.WithLabelValues("success").Inc()
		r.metrics.LastSuccessfulRun.SetToCurrentTime()
		log.InfoContext(ctx, "Pipeline finished", "commit", result.CommitHash,
			"duration", run.FinishedAt.Sub(run.StartedAt).String())
	}

	if updateErr := r.runs.UpdateRun(context.WithoutCancel(ctx), run); updateErr != nil {
		log.WarnContext(ctx, "Failed to record run result", sl.Err(updateErr))
	}

	return result, err
}

// execute runs the stages in order and returns the last stage entered.
func (r *Runner) execute(ctx context.Context, issueKey string, opts Options, result *Result) (string, error) {
	story, err := r.fetch(ctx, issueKey)
	if err != nil {
		return StageFetch, err
	}
	result.Story = story

	err = r.stage(ctx, StagePrompt, func(context.Context) (stageErr error) {
		result.Prompt, stageErr = codegen.Prompt(story, r.promptOptions())
		return stageErr
	})
	if err != nil {
		return StagePrompt, err
	}

	var code string
	err = r.stage(ctx, StageGenerate, func(ctx context.Context) (stageErr error) {
		code, stageErr = r.generate(ctx, result.Prompt)
		return stageErr
	})
	if err != nil {
		return StageGenerate, err
	}

	err = r.stage(ctx, StageWrite, func(context.Context) (stageErr error) {
		result.CodePath, stageErr = workspace.WriteFile(r.repoPath, r.cfg.CodePath, code)
		return stageErr
	})
	if err != nil {
		return StageWrite, err
	}

	err = r.stage(ctx, StageTests, func(context.Context) (stageErr error) {
		result.TestPath, stageErr = r.writeTests()
		return stageErr
	})
	if err != nil {
		return StageTests, err
	}

	err = r.stage(ctx, StageLint, func(ctx context.Context) error {
		return r.lint(ctx, result)
	})
	if err != nil {
		return StageLint, err
	}

	if opts.DryRun {
		r.log.InfoContext(ctx, "Dry run, skipping commit and ticket update", "issue", issueKey)
		return StageLint, nil
	}

	err = r.stage(ctx, StageCommit, func(ctx context.Context) error {
		return r.withRetry(ctx, StageCommit, func(ctx context.Context) (commitErr error) {
			result.CommitHash, commitErr = r.committer.CommitAndPush(ctx, "Implemented: "+story.Summary)
			return commitErr
		})
	})
	if err != nil {
		return StageCommit, err
	}

	err = r.stage(ctx, StageUpdate, func(ctx context.Context) error {
		return r.withRetry(ctx, StageUpdate, func(ctx context.Context) error {
			updateErr := r.tracker.UpdateTicket(ctx, issueKey, r.cfg.Comment)
			if errors.Is(updateErr, tracker.ErrTransitionNotFound) {
				return retry.Permanent(updateErr)
			}
			return updateErr
		})
	})
	if err != nil {
		return StageUpdate, err
	}

	return StageUpdate, nil
}

// Prompt fetches the story behind issueKey and renders its code generation prompt.
func (r *Runner) Prompt(ctx context.Context, issueKey string) (string, error) {
	story, err := r.fetch(ctx, issueKey)
	if err != nil {
		return "", err
	}

	prompt, err := codegen.Prompt(story, r.promptOptions())
	if err != nil {
		return "", &StageError{Stage: StagePrompt, Err: err}
	}

	return prompt, nil
}

// LastRun returns the most recent recorded run of issueKey.
func (r *Runner) LastRun(ctx context.Context, issueKey string) (models.PipelineRun, error) {
	run, err := r.runs.GetLastRun(ctx, issueKey)
	if err != nil {
		return models.PipelineRun{}, fmt.Errorf("failed to get last run of %s: %w", issueKey, err)
	}

	return run, nil
}

// History returns up to limit recorded runs, newest first. A limit <= 0 returns every run.
func (r *Runner) History(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	runs, err := r.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

func (r *Runner) fetch(ctx context.Context, issueKey string) (models.Story, error) {
	var story models.Story

	err := r.stage(ctx, StageFetch, func(ctx context.Context) error {
		return r.withRetry(ctx, StageFetch, func(ctx context.Context) error {
			var fetchErr error
			story, fetchErr = r.tracker.FetchStory(ctx, issueKey)
			if errors.Is(fetchErr, tracker.ErrStoryNotFound) {
				return retry.Permanent(fetchErr)
			}
			return fetchErr
		})
	})

	return story, err
}

// generate asks the model for code and returns it fence-stripped and gofmt'd.
func (r *Runner) generate(ctx context.Context, prompt string) (string, error) {
	var reply string

	err := r.withRetry(ctx, StageGenerate, func(ctx context.Context) error {
		var genErr error
		reply, genErr = r.generator.Generate(ctx, prompt)
		return genErr
	})
	if err != nil {
		return "", err
	}

	code, err := workspace.FormatGo(parser.ExtractCode(reply, "go"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}

	return code, nil
}

func (r *Runner) writeTests() (string, error) {
	modulePath, err := workspace.ModulePath(r.repoPath)
	if err != nil {
		return "", err
	}

	src, err := workspace.UnitTest(workspace.TestSpec{
		PackageName: r.packageName(),
		APIPath:     r.cfg.APIPath,
	}, workspace.ImportPath(modulePath, r.cfg.CodePath))
	if err != nil {
		return "", err
	}

	return workspace.WriteFile(r.repoPath, r.cfg.TestPath, src)
}

func (r *Runner) lint(ctx context.Context, result *Result) error {
	report, err := r.linter.Run(ctx, r.repoPath)
	result.LintReport = report
	result.LintPassed = err == nil

	if err == nil {
		return nil
	}
	if r.cfg.StrictLint {
		return err
	}

	r.metrics.StageFailures.WithLabelValues(StageLint).Inc()
	r.log.WarnContext(ctx, "Lint reported problems, continuing", sl.Err(err))

	return nil
}

func (r *Runner) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	startTime := time.Now()
	r.log.DebugContext(ctx, "Stage started", "stage", name)

	err := fn(ctx)
	r.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(startTime).Seconds())

	if err != nil {
		r.metrics.StageFailures.WithLabelValues(name).Inc()
		return &StageError{Stage: name, Err: err}
	}

	r.log.DebugContext(ctx, "Stage completed", "stage", name, "duration", time.Since(startTime).String())

	return nil
}

func (r *Runner) withRetry(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, r.log, "pipeline."+name, r.cfg.RetryAttempts, r.cfg.RetryDelay, fn)
}

func (r *Runner) promptOptions() codegen.PromptOptions {
	return codegen.PromptOptions{PackageName: r.packageName(), APIPath: r.cfg.APIPath}
}

// packageName is the directory name of the generated file; empty for files at the repo root.
func (r *Runner) packageName() string {
	dir := filepath.ToSlash(filepath.Dir(filepath.Clean(r.cfg.CodePath)))
	if dir == "." {
		return ""
	}

	return path.Base(dir)
}
