package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/Houeta/scrum-agent/internal/config"
)

// Git commits the working tree at cfg.RepoPath and pushes it to the configured remote.
type Git struct {
	log *slog.Logger
	cfg config.GitConfig
	now func() time.Time
}

func NewGit(log *slog.Logger, cfg config.GitConfig) *Git {
	return &Git{
		log: log.With(slog.String("division", "vcs")),
		cfg: cfg,
		now: time.Now,
	}
}

func (g *Git) initLogger(opn string) *slog.Logger {
	return g.log.With(
		slog.String("op", opn),
		slog.String("repo", g.cfg.RepoPath),
	)
}

// CommitAndPush stages every change, commits it with message and pushes the branch.
// A clean working tree is not an error: HEAD is pushed and its hash returned.
func (g *Git) CommitAndPush(ctx context.Context, message string) (string, error) {
	const opn = "Git.CommitAndPush"
	log := g.initLogger(opn)

	repo, err := git.PlainOpen(g.cfg.RepoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repository %s: %w", g.cfg.RepoPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if err = worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("failed to stage changes: %w", err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  g.cfg.AuthorName,
			Email: g.cfg.AuthorEmail,
			When:  g.now(),
		},
	})
	switch {
	case errors.Is(err, git.ErrEmptyCommit):
		head, headErr := repo.Head()
		if headErr != nil {
			return "", fmt.Errorf("nothing to commit and no HEAD: %w", headErr)
		}
		hash = head.Hash()
		log.InfoContext(ctx, "Nothing to commit, working tree clean", "head", hash.String())
	case err != nil:
		return "", fmt.Errorf("failed to commit: %w", err)
	default:
		log.InfoContext(ctx, "Changes committed", "hash", hash.String())
	}

	if !g.cfg.Push {
		log.DebugContext(ctx, "Push disabled")
		return hash.String(), nil
	}

	if err = g.push(ctx, repo); err != nil {
		return hash.String(), err
	}

	log.InfoContext(ctx, "Branch pushed", "remote", g.cfg.Remote, "branch", g.cfg.Branch)

	return hash.String(), nil
}

func (g *Git) push(ctx context.Context, repo *git.Repository) error {
	branch := plumbing.NewBranchReferenceName(g.cfg.Branch)

	err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: g.cfg.Remote,
		RefSpecs:   []gitconfig.RefSpec{gitconfig.RefSpec(branch + ":" + branch)},
		Auth:       g.auth(),
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push %s to %s: %w", g.cfg.Branch, g.cfg.Remote, err)
	}

	return nil
}

func (g *Git) auth() transport.AuthMethod {
	if g.cfg.Token == "" {
		return nil
	}

	username := g.cfg.Username
	if username == "" {
		// Token based hosts accept any non-empty user name.
		username = "git"
	}

	return &http.BasicAuth{Username: username, Password: g.cfg.Token}
}
