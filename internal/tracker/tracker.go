package tracker

import (
	"context"
	"errors"

	"github.com/Houeta/scrum-agent/internal/models"
)

var (
	ErrStoryNotFound      = errors.New("story not found")
	ErrTransitionNotFound = errors.New("transition not found")
)

// Tracker fetches user stories and reports back once they are implemented.
type Tracker interface {
	FetchStory(ctx context.Context, key string) (models.Story, error)
	UpdateTicket(ctx context.Context, key, comment string) error
}
