package workspace_test

import (
	"testing"

	"github.com/Houeta/scrum-agent/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestName(t *testing.T) {
	tests := map[string]string{
		"/employees":             "TestGetEmployees",
		"/employees/dummy":       "TestGetEmployeesDummy",
		"/employees/department/": "TestGetEmployeesDepartment",
		"/api/v1/staff-list":     "TestGetApiV1StaffList",
		"/":                      "TestGetRoot",
	}

	for path, expected := range tests {
		assert.Equal(t, expected, workspace.TestName(path), path)
	}
}

func TestUnitTest(t *testing.T) {
	src, err := workspace.UnitTest(workspace.TestSpec{APIPath: "/employees"},
		"github.com/Houeta/scrum-agent/generated/employees")
	require.NoError(t, err)

	assert.Contains(t, src, "package employees_test")
	assert.Contains(t, src, `"github.com/Houeta/scrum-agent/generated/employees"`)
	assert.Contains(t, src, "func TestGetEmployees(t *testing.T)")
	assert.Contains(t, src, `httptest.NewRequest(http.MethodGet, "/employees", nil)`)
	assert.Contains(t, src, "employees.NewHandler().ServeHTTP(rr, req)")
	assert.Contains(t, src, "http.StatusOK")

	formatted, err := workspace.FormatGo(src)
	require.NoError(t, err)
	assert.Equal(t, formatted, src)
}
