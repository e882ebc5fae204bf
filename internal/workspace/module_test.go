package workspace_test

import (
	"path/filepath"
	"testing"

	"github.com/Flaque/filet"
	"github.com/Houeta/scrum-agent/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulePath(t *testing.T) {
	defer filet.CleanUp(t)

	tests := []struct {
		name     string
		gomod    string
		expected string
		err      error
	}{
		{name: "plain", gomod: "module example.com/app\n\ngo 1.24\n", expected: "example.com/app"},
		{name: "quoted with comment", gomod: "// app\nmodule \"example.com/quoted\"\n", expected: "example.com/quoted"},
		{name: "missing directive", gomod: "go 1.24\n", err: workspace.ErrNoModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filet.TmpDir(t, "")
			filet.File(t, filepath.Join(dir, "go.mod"), tt.gomod)

			got, err := workspace.ModulePath(dir)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := workspace.ModulePath(filet.TmpDir(t, ""))
	require.Error(t, err)
}

func TestImportPath(t *testing.T) {
	assert.Equal(t, "example.com/app/generated/employees",
		workspace.ImportPath("example.com/app", "generated/employees/employees.go"))
	assert.Equal(t, "example.com/app", workspace.ImportPath("example.com/app", "main.go"))
}
