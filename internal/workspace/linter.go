package workspace

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// DefaultLintCommands format and vet the working tree.
var DefaultLintCommands = []string{"gofmt -l -w .", "go vet ./..."}

// LintError reports a lint command that exited with an error.
type LintError struct {
	Command string
	Output  string
	Err     error
}

func (e *LintError) Error() string {
	return fmt.Sprintf("lint command '%s' failed: %v", e.Command, e.Err)
}

func (e *LintError) Unwrap() error { return e.Err }

type Linter struct {
	log      *slog.Logger
	commands []string
}

// NewLinter creates a Linter. Empty commands means DefaultLintCommands.
func NewLinter(log *slog.Logger, commands []string) *Linter {
	if len(commands) == 0 {
		commands = DefaultLintCommands
	}

	return &Linter{log: log.With(slog.String("division", "linter")), commands: commands}
}

// Run executes every command in dir and returns their combined output.
// All commands run even after a failure; the first failure is returned as *LintError.
func (l *Linter) Run(ctx context.Context, dir string) (string, error) {
	var (
		report   strings.Builder
		firstErr *LintError
	)

	for _, command := range l.commands {
		fields := strings.Fields(command)
		if len(fields) == 0 {
			continue
		}

		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, fields[0], fields[1:]...) //nolint:gosec // commands come from config
		cmd.Dir = dir
		cmd.Stdout = &out
		cmd.Stderr = &out

		err := cmd.Run()
		fmt.Fprintf(&report, "$ %s\n%s", command, out.String())

		if err != nil {
			l.log.WarnContext(ctx, "Lint command failed", "command", command, "error", err)
			if firstErr == nil {
				firstErr = &LintError{Command: command, Output: out.String(), Err: err}
			}
			continue
		}

		l.log.DebugContext(ctx, "Lint command passed", "command", command)
	}

	if firstErr != nil {
		return report.String(), firstErr
	}

	return report.String(), nil
}
