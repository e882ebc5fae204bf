package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/Houeta/scrum-agent/internal/client"
	"github.com/Houeta/scrum-agent/internal/config"
	"github.com/Houeta/scrum-agent/internal/lib/logger/sl"
	"github.com/Houeta/scrum-agent/internal/models"
	"github.com/Houeta/scrum-agent/internal/parser"
)

const requestTimeout = 30 * time.Second

type Jira struct {
	log               *slog.Logger
	client            *jira.Client
	doneTransition    string
	acceptanceFieldID string
}

// issuePayload keeps fields loosely typed so custom fields can be read by id.
type issuePayload struct {
	Key            string         `json:"key"`
	Fields         map[string]any `json:"fields"`
	RenderedFields map[string]any `json:"renderedFields"`
}

// NewJira creates a Jira tracker that authenticates with the user's API token.
func NewJira(log *slog.Logger, cfg config.JiraConfig) (*Jira, error) {
	transport := jira.BasicAuthTransport{
		Username:  cfg.User,
		Password:  cfg.Token,
		Transport: client.NewLoggingTransport(log, nil),
	}

	httpClient := transport.Client()
	httpClient.Timeout = requestTimeout

	jiraClient, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client for %s: %w", cfg.URL, err)
	}

	return &Jira{
		log:               log,
		client:            jiraClient,
		doneTransition:    cfg.DoneTransition,
		acceptanceFieldID: cfg.AcceptanceFieldID,
	}, nil
}

func (j *Jira) initLogger(opn string) *slog.Logger {
	return j.log.With(
		slog.String("op", opn),
		slog.String("division", "tracker"),
	)
}

// FetchStory loads the issue with its rendered fields and maps it onto a story.
func (j *Jira) FetchStory(ctx context.Context, key string) (models.Story, error) {
	const opn = "Jira.FetchStory"
	log := j.initLogger(opn).With("issue", key)

	req, err := j.client.NewRequestWithContext(ctx, http.MethodGet,
		"rest/api/2/issue/"+url.PathEscape(key)+"?expand=renderedFields", nil)
	if err != nil {
		return models.Story{}, fmt.Errorf("failed to build issue request: %w", err)
	}

	var payload issuePayload
	resp, err := j.client.Do(req, &payload)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusNotFound {
				return models.Story{}, fmt.Errorf("%w: %s", ErrStoryNotFound, key)
			}
		}
		return models.Story{}, fmt.Errorf("failed to fetch issue %s: %w", key, err)
	}

	story := j.toStory(payload)
	if story.Key == "" {
		story.Key = key
	}

	log.DebugContext(ctx, "Story fetched", "summary", story.Summary)

	return story, nil
}

func (j *Jira) toStory(payload issuePayload) models.Story {
	story := models.Story{
		Key:     payload.Key,
		Summary: stringField(payload.Fields, "summary"),
	}

	var parsedCriteria string

	if rendered := stringField(payload.RenderedFields, "description"); rendered != "" {
		description, criteria, err := parser.ParseRenderedDescription(rendered)
		if err == nil {
			story.Description = description
			parsedCriteria = criteria
		}
	}
	if story.Description == "" {
		story.Description = strings.TrimSpace(stringField(payload.Fields, "description"))
	}

	if j.acceptanceFieldID != "" {
		story.AcceptanceCriteria = j.customCriteria(payload)
	}
	if story.AcceptanceCriteria == "" {
		story.AcceptanceCriteria = parsedCriteria
	}

	return story
}

func (j *Jira) customCriteria(payload issuePayload) string {
	if rendered := stringField(payload.RenderedFields, j.acceptanceFieldID); rendered != "" {
		if text, _, err := parser.ParseRenderedDescription(rendered); err == nil {
			return text
		}
	}

	return strings.TrimSpace(stringField(payload.Fields, j.acceptanceFieldID))
}

// UpdateTicket comments on the issue and moves it through the configured done transition.
func (j *Jira) UpdateTicket(ctx context.Context, key, comment string) error {
	const opn = "Jira.UpdateTicket"
	log := j.initLogger(opn).With("issue", key)

	if _, _, err := j.client.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: comment}); err != nil {
		return fmt.Errorf("failed to comment on %s: %w", key, err)
	}

	transitions, _, err := j.client.Issue.GetTransitionsWithContext(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to get transitions of %s: %w", key, err)
	}

	transitionID := ""
	for _, transition := range transitions {
		if strings.EqualFold(transition.Name, j.doneTransition) {
			transitionID = transition.ID
			break
		}
	}
	if transitionID == "" {
		log.WarnContext(ctx, "Transition is not available", "transition", j.doneTransition)
		return fmt.Errorf("%w: '%s' on %s", ErrTransitionNotFound, j.doneTransition, key)
	}

	resp, err := j.client.Issue.DoTransitionWithContext(ctx, key, transitionID)
	if resp != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		log.ErrorContext(ctx, "Failed to transition issue", sl.Err(err))
		return fmt.Errorf("failed to transition %s: %w", key, err)
	}

	log.InfoContext(ctx, "Ticket updated", "transition", j.doneTransition)

	return nil
}

func stringField(fields map[string]any, name string) string {
	value, ok := fields[name].(string)
	if !ok {
		return ""
	}
	return value
}
