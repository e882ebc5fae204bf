package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Houeta/scrum-agent/internal/models"
)

// CannedStory is served by Mock for keys that have no fixture.
func CannedStory(key string) models.Story {
	return models.Story{
		Key:     key,
		Summary: "Expose API to list all employees",
		Description: "As a user, I want an API that returns all employees " +
			"so that I can display them on the dashboard.",
		AcceptanceCriteria: "API should return a list of employees in JSON. " +
			"Endpoint should be GET /employees. " +
			"Each employee should have id, name, email, department. " +
			"Should return 200 OK with valid data. " +
			"If no employees found, return empty list.",
	}
}

// Mock is an offline Tracker. Comments are kept in memory.
type Mock struct {
	log      *slog.Logger
	stories  map[string]models.Story
	mu       sync.Mutex
	comments map[string][]string
}

// NewMock creates a Mock. A non-empty fixturesPath names a YAML mapping of issue key to story.
func NewMock(log *slog.Logger, fixturesPath string) (*Mock, error) {
	stories := make(map[string]models.Story)

	if fixturesPath != "" {
		data, err := os.ReadFile(fixturesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read story fixtures: %w", err)
		}
		if err = yaml.Unmarshal(data, &stories); err != nil {
			return nil, fmt.Errorf("failed to decode story fixtures %s: %w", fixturesPath, err)
		}
	}

	return &Mock{
		log:      log.With(slog.String("division", "tracker")),
		stories:  stories,
		comments: make(map[string][]string),
	}, nil
}

func (m *Mock) FetchStory(ctx context.Context, key string) (models.Story, error) {
	m.log.InfoContext(ctx, "[MOCK] Faking fetch for issue", "issue", key)

	story, ok := m.stories[key]
	if !ok {
		return CannedStory(key), nil
	}
	story.Key = key

	return story, nil
}

func (m *Mock) UpdateTicket(ctx context.Context, key, comment string) error {
	m.log.InfoContext(ctx, "[MOCK] Faking ticket update", "issue", key, "comment", comment)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[key] = append(m.comments[key], comment)

	return nil
}

// Comments returns the comments recorded for key.
func (m *Mock) Comments(key string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.comments[key]...)
}
