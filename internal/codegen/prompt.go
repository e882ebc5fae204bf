package codegen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Houeta/scrum-agent/internal/models"
)

// PromptOptions describes the artifact the model is asked to produce.
type PromptOptions struct {
	PackageName string // PackageName of the generated file, `employees` by default.
	APIPath     string // APIPath is the endpoint the story is about.
}

var promptTemplate = template.Must(template.New("prompt").Parse(`
You are an expert Go developer. Write a net/http handler based on the story:

Summary: {{ .Story.Summary }}

Description:
{{ .Story.Description }}

Acceptance Criteria:
{{ .Story.AcceptanceCriteria }}

Ensure:
- RESTful design
- A single file in package {{ .PackageName }}
- An exported constructor: func NewHandler() http.Handler
- The handler serves {{ .APIPath }}
- Standard library only
- Clean code practices

Reply with the Go source in one fenced code block.
`))

// Prompt renders the code generation prompt for story.
func Prompt(story models.Story, opts PromptOptions) (string, error) {
	if opts.PackageName == "" {
		opts.PackageName = "employees"
	}
	if opts.APIPath == "" {
		opts.APIPath = "/employees"
	}

	var buf bytes.Buffer
	err := promptTemplate.Execute(&buf, struct {
		Story models.Story
		PromptOptions
	}{Story: story, PromptOptions: opts})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	return strings.TrimLeft(buf.String(), "\n"), nil
}
