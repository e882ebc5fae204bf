package tracker_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Houeta/scrum-agent/internal/config"
	"github.com/Houeta/scrum-agent/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const issueJSON = `{
  "key": "SCRUM-1",
  "fields": {
    "summary": "Expose API to list all employees",
    "description": "As a user, I want an API.\n*Acceptance Criteria*\n* return JSON",
    "customfield_10050": "Endpoint should be GET /employees."
  },
  "renderedFields": {
    "description": "<p>As a user, I want an API.</p><p><b>Acceptance Criteria</b></p><ul><li>return JSON</li></ul>"
  }
}`

type fakeJira struct {
	mu             sync.Mutex
	comments       []string
	transitions    []string
	transitionName string
	unknownPaths   []string
}

func (f *fakeJira) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/2/issue/SCRUM-1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "renderedFields", r.URL.Query().Get("expand"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot@example.com", user)
		assert.Equal(t, "secret", pass)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, issueJSON)
	})
	mux.HandleFunc("GET /rest/api/2/issue/SCRUM-404", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"errorMessages":["Issue does not exist"]}`)
	})
	mux.HandleFunc("GET /rest/api/2/issue/{key}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.unknownPaths = append(f.unknownPaths, r.URL.EscapedPath())
		f.mu.Unlock()
		assert.Equal(t, "SCRUM 7/1", r.PathValue("key"))
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("POST /rest/api/2/issue/SCRUM-1/comment", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Body string `json:"body"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.comments = append(f.comments, body.Body)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"10001","body":"ok"}`)
	})
	mux.HandleFunc("GET /rest/api/2/issue/SCRUM-1/transitions", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w,
			`{"transitions":[{"id":"21","name":"In Progress"},{"id":"31","name":"`+f.transitionName+`"}]}`)
	})
	mux.HandleFunc("POST /rest/api/2/issue/SCRUM-1/transitions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Transition struct {
				ID string `json:"id"`
			} `json:"transition"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.transitions = append(f.transitions, body.Transition.ID)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func newJira(t *testing.T, fake *fakeJira, fieldID string) *tracker.Jira {
	t.Helper()

	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	jiraTracker, err := tracker.NewJira(slog.New(slog.DiscardHandler), config.JiraConfig{
		URL:               srv.URL,
		User:              "bot@example.com",
		Token:             "secret",
		DoneTransition:    "done",
		AcceptanceFieldID: fieldID,
	})
	require.NoError(t, err)

	return jiraTracker
}

func TestJira_FetchStory(t *testing.T) {
	ctx := context.Background()

	t.Run("criteria from rendered description", func(t *testing.T) {
		story, err := newJira(t, &fakeJira{}, "").FetchStory(ctx, "SCRUM-1")

		require.NoError(t, err)
		assert.Equal(t, "SCRUM-1", story.Key)
		assert.Equal(t, "Expose API to list all employees", story.Summary)
		assert.Equal(t, "As a user, I want an API.", story.Description)
		assert.Equal(t, "return JSON", story.AcceptanceCriteria)
	})

	t.Run("criteria from custom field", func(t *testing.T) {
		story, err := newJira(t, &fakeJira{}, "customfield_10050").FetchStory(ctx, "SCRUM-1")

		require.NoError(t, err)
		assert.Equal(t, "Endpoint should be GET /employees.", story.AcceptanceCriteria)
	})

	t.Run("missing custom field falls back", func(t *testing.T) {
		story, err := newJira(t, &fakeJira{}, "customfield_99999").FetchStory(ctx, "SCRUM-1")

		require.NoError(t, err)
		assert.Equal(t, "return JSON", story.AcceptanceCriteria)
	})

	t.Run("unknown issue", func(t *testing.T) {
		_, err := newJira(t, &fakeJira{}, "").FetchStory(ctx, "SCRUM-404")

		require.ErrorIs(t, err, tracker.ErrStoryNotFound)
	})

	t.Run("key is escaped into a single path segment", func(t *testing.T) {
		fake := &fakeJira{}
		_, err := newJira(t, fake, "").FetchStory(ctx, "SCRUM 7/1")

		require.ErrorIs(t, err, tracker.ErrStoryNotFound)
		assert.Equal(t, []string{"/rest/api/2/issue/SCRUM%207%2F1"}, fake.unknownPaths)
	})
}

func TestJira_UpdateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("comment and transition", func(t *testing.T) {
		fake := &fakeJira{transitionName: "Done"}

		err := newJira(t, fake, "").UpdateTicket(ctx, "SCRUM-1", "Code pushed with tests. Closing story.")

		require.NoError(t, err)
		assert.Equal(t, []string{"Code pushed with tests. Closing story."}, fake.comments)
		assert.Equal(t, []string{"31"}, fake.transitions)
	})

	t.Run("transition not available", func(t *testing.T) {
		fake := &fakeJira{transitionName: "Closed"}

		err := newJira(t, fake, "").UpdateTicket(ctx, "SCRUM-1", "comment")

		require.ErrorIs(t, err, tracker.ErrTransitionNotFound)
		assert.Len(t, fake.comments, 1)
		assert.Empty(t, fake.transitions)
	})
}
