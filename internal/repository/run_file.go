package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Houeta/scrum-agent/internal/models"
)

// FileRunStore keeps the run history in a YAML file so that separate agent invocations share it.
// Every call reads the file; writes replace it atomically.
type FileRunStore struct {
	mu   sync.Mutex
	path string
}

type runLog struct {
	Runs []models.PipelineRun `yaml:"runs"`
}

func NewFileRunStore(path string) *FileRunStore {
	return &FileRunStore{path: path}
}

func (s *FileRunStore) SaveRun(_ context.Context, run models.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return err
	}

	return s.store(append(runs, run))
}

func (s *FileRunStore) UpdateRun(_ context.Context, run models.PipelineRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return err
	}

	if err = replaceRun(runs, run); err != nil {
		return err
	}

	return s.store(runs)
}

func (s *FileRunStore) GetLastRun(_ context.Context, issueKey string) (models.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return models.PipelineRun{}, err
	}

	return lastRun(runs, issueKey)
}

func (s *FileRunStore) ListRuns(_ context.Context, limit int) ([]models.PipelineRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.load()
	if err != nil {
		return nil, err
	}

	return newestRuns(runs, limit), nil
}

func (s *FileRunStore) load() ([]models.PipelineRun, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run log %s: %w", s.path, err)
	}

	var doc runLog
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse run log %s: %w", s.path, err)
	}

	return doc.Runs, nil
}

func (s *FileRunStore) store(runs []models.PipelineRun) error {
	data, err := yaml.Marshal(runLog{Runs: runs})
	if err != nil {
		return fmt.Errorf("failed to encode run log: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err = os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create run log directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create run log: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write run log: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}

	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace run log %s: %w", s.path, err)
	}

	return nil
}

// replaceRun overwrites the run with the same ID, keeping its issue key and start time.
func replaceRun(runs []models.PipelineRun, run models.PipelineRun) error {
	for i := range runs {
		if runs[i].ID == run.ID {
			run.IssueKey = runs[i].IssueKey
			run.StartedAt = runs[i].StartedAt
			runs[i] = run
			return nil
		}
	}

	return fmt.Errorf("failed to update run '%s': %w", run.ID, ErrNotFound)
}

func lastRun(runs []models.PipelineRun, issueKey string) (models.PipelineRun, error) {
	var (
		last  models.PipelineRun
		found bool
	)
	for _, run := range runs {
		if run.IssueKey == issueKey && (!found || !run.StartedAt.Before(last.StartedAt)) {
			last, found = run, true
		}
	}

	if !found {
		return models.PipelineRun{}, fmt.Errorf("no runs for issue '%s': %w", issueKey, ErrNotFound)
	}

	return last, nil
}

// newestRuns sorts runs in place, newest first, and keeps up to limit of them. A limit <= 0 keeps every run.
func newestRuns(runs []models.PipelineRun, limit int) []models.PipelineRun {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	if runs == nil {
		runs = make([]models.PipelineRun, 0)
	}

	return runs
}
