package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/Houeta/scrum-agent/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRunStore_SharedAcrossInstances(t *testing.T) {
	defer filet.CleanUp(t)

	path := filepath.Join(filet.TmpDir(t, ""), "state", "runs.yaml")
	ctx := context.Background()
	started := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	writer := repository.NewFileRunStore(path)
	_, err := writer.GetLastRun(ctx, "SCRUM-1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, writer.SaveRun(ctx, models.PipelineRun{
		ID: "a", IssueKey: "SCRUM-1", Status: models.RunRunning, StartedAt: started,
	}))
	require.NoError(t, writer.SaveRun(ctx, models.PipelineRun{
		ID: "b", IssueKey: "SCRUM-2", Status: models.RunRunning, StartedAt: started.Add(time.Minute),
	}))
	require.NoError(t, writer.UpdateRun(ctx, models.PipelineRun{
		ID: "a", Status: models.RunFailed, Stage: "lint", Error: "vet failed", FinishedAt: started.Add(time.Second),
	}))
	require.ErrorIs(t, writer.UpdateRun(ctx, models.PipelineRun{ID: "zzz"}), repository.ErrNotFound)

	reader := repository.NewFileRunStore(path)

	last, err := reader.GetLastRun(ctx, "SCRUM-1")
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, last.Status)
	assert.Equal(t, "lint", last.Stage)
	assert.Equal(t, "vet failed", last.Error)
	assert.Equal(t, "SCRUM-1", last.IssueKey)
	assert.True(t, started.Equal(last.StartedAt))
	assert.True(t, started.Add(time.Second).Equal(last.FinishedAt))

	all, err := reader.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.True(t, all[0].FinishedAt.IsZero())

	newest, err := reader.ListRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, newest, 1)
	assert.Equal(t, "b", newest[0].ID)
}

func TestFileRunStore_LastRunIsNewest(t *testing.T) {
	defer filet.CleanUp(t)

	store := repository.NewFileRunStore(filepath.Join(filet.TmpDir(t, ""), "runs.yaml"))
	ctx := context.Background()
	now := time.Now().UTC()

	for _, run := range []models.PipelineRun{
		{ID: "b", IssueKey: "SCRUM-1", Status: models.RunRunning, StartedAt: now},
		{ID: "a", IssueKey: "SCRUM-1", Status: models.RunRunning, StartedAt: now.Add(-time.Hour)},
		{ID: "c", IssueKey: "SCRUM-2", Status: models.RunRunning, StartedAt: now.Add(-time.Minute)},
	} {
		require.NoError(t, store.SaveRun(ctx, run))
	}

	last, err := store.GetLastRun(ctx, "SCRUM-1")
	require.NoError(t, err)
	assert.Equal(t, "b", last.ID)

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, "c", runs[1].ID)

	all, err := store.ListRuns(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFileRunStore_EmptyAndCorrupt(t *testing.T) {
	defer filet.CleanUp(t)

	dir := filet.TmpDir(t, "")
	ctx := context.Background()

	runs, err := repository.NewFileRunStore(filepath.Join(dir, "missing.yaml")).ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	corrupt := filepath.Join(dir, "corrupt.yaml")
	require.NoError(t, os.WriteFile(corrupt, []byte("runs: [\n"), 0o600))

	_, err = repository.NewFileRunStore(corrupt).ListRuns(ctx, 10)
	require.ErrorContains(t, err, "failed to parse run log")
}
