package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Houeta/scrum-agent/internal/repository"
	"github.com/Houeta/scrum-agent/internal/services/pipeline"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "agent",
		Short:         "Turn tracker stories into committed, tested Go code",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"),
		"path to the YAML config file (defaults to $CONFIG_PATH)")

	root.AddCommand(newRunCmd(opts), newPromptCmd(opts), newStatusCmd(opts), newHistoryCmd(opts))

	return root
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run <ISSUE-KEY>",
		Short: "Run the full pipeline for a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd.Context(), opts.configPath, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer deps.close()

			result, err := deps.runner.Run(cmd.Context(), args[0], pipeline.Options{DryRun: dryRun})
			deps.exportMetrics(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run:     %s\n", result.RunID)
			fmt.Fprintf(out, "story:   %s\n", result.Story.Summary)
			fmt.Fprintf(out, "code:    %s\n", result.CodePath)
			fmt.Fprintf(out, "tests:   %s\n", result.TestPath)
			fmt.Fprintf(out, "lint:    %s\n", passFail(result.LintPassed))
			if result.DryRun {
				fmt.Fprintln(out, "commit:  skipped (dry run)")
				return nil
			}
			fmt.Fprintf(out, "commit:  %s\n", result.CommitHash)

			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "stop after lint: no commit and no ticket update")

	return cmd
}

func newPromptCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt <ISSUE-KEY>",
		Short: "Print the code generation prompt for a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd.Context(), opts.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer deps.close()

			prompt, err := deps.runner.Prompt(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), prompt)

			return nil
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <ISSUE-KEY>",
		Short: "Show the last recorded run of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildDeps(cmd.Context(), opts.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer deps.close()

			out := cmd.OutOrStdout()

			run, err := deps.runner.LastRun(cmd.Context(), args[0])
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Fprintf(out, "%s: no runs recorded\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s: %s at stage %s\n", run.IssueKey, run.Status, run.Stage)
			fmt.Fprintf(out, "run:      %s\n", run.ID)
			fmt.Fprintf(out, "started:  %s\n", run.StartedAt.Format(time.RFC3339))
			if !run.FinishedAt.IsZero() {
				fmt.Fprintf(out, "finished: %s\n", run.FinishedAt.Format(time.RFC3339))
			}
			if run.CommitHash != "" {
				fmt.Fprintf(out, "commit:   %s\n", run.CommitHash)
			}
			if run.Error != "" {
				fmt.Fprintf(out, "error:    %s\n", run.Error)
			}

			return nil
		},
	}
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := buildDeps(cmd.Context(), opts.configPath, cmd.ErrOrStderr(), false)
			if err != nil {
				return err
			}
			defer deps.close()

			runs, err := deps.runner.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}

			for _, run := range runs {
				fmt.Fprintf(out, "%s  %-12s %-9s %-8s %s\n", run.StartedAt.Format(time.RFC3339), run.IssueKey,
					run.Status, run.Stage, run.CommitHash)
			}

			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list, 0 lists every run")

	return cmd
}

func passFail(ok bool) string {
	if ok {
		return "passed"
	}
	return "failed (see log)"
}
