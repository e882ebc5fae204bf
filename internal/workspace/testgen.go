package workspace

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"
)

// TestSpec describes the smoke test rendered by UnitTest.
type TestSpec struct {
	PackageName string // PackageName of the code under test.
	APIPath     string // APIPath is requested with GET and must answer 200.
}

var unitTestTemplate = template.Must(template.New("test").Parse(`package {{ .PackageName }}_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"{{ .ImportPath }}"
)

func {{ .TestName }}(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "{{ .APIPath }}", nil)
	rr := httptest.NewRecorder()

	{{ .PackageName }}.NewHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}
`))

// UnitTest renders a Go test that requests spec.APIPath from the generated handler.
// importPath is the import path of the generated package.
func UnitTest(spec TestSpec, importPath string) (string, error) {
	if spec.PackageName == "" {
		spec.PackageName = "employees"
	}

	var buf bytes.Buffer
	err := unitTestTemplate.Execute(&buf, struct {
		TestSpec
		ImportPath string
		TestName   string
	}{TestSpec: spec, ImportPath: importPath, TestName: TestName(spec.APIPath)})
	if err != nil {
		return "", fmt.Errorf("failed to render unit test: %w", err)
	}

	return FormatGo(buf.String())
}

// TestName turns an api path into a test function name, `/employees/dummy` becomes `TestGetEmployeesDummy`.
func TestName(apiPath string) string {
	var name strings.Builder
	name.WriteString("TestGet")

	upper := true
	for _, r := range apiPath {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		name.WriteRune(r)
	}

	if name.Len() == len("TestGet") {
		name.WriteString("Root")
	}

	return name.String()
}
